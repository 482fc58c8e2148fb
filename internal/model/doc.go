// Package model provides the Go struct representation of resource
// definition files. Its core purpose is to create a strongly-typed,
// in-memory model of the operator's declarations by parsing the raw HCL.
//
// The model is built around a few key structures:
//
//   - Resource: one administrative screen. It aggregates the plain fields
//     and the repeatable field-groups declared for that screen.
//
//   - Field: the definition of a single leaf field: key, kind, value type,
//     validation rule fragment, and optional default.
//
//   - Fieldset: the definition of a repeatable field-group: its child field
//     schema (plain fields and grid-arranged groups) plus configuration such
//     as min/max item counts and head bindings.
//
// Structural mistakes in a definition file (an unknown attribute, a fieldset
// nested inside another fieldset, a default value that does not match the
// declared type) are reported as hcl.Diagnostics at load time. They are
// operator configuration errors and are never recoverable at request time.
package model
