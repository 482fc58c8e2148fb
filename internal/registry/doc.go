// Package registry provides the central mapping between the field kind
// identifiers used in resource definitions (e.g. "text", "image") and the
// behavior the engine attaches to them: value type, implicit validation
// fragment, and whether the kind carries binary attachments.
//
// During application startup, the registry is populated with the core kinds
// and then checked against the loaded definitions, so that a resource file
// referencing an unknown kind fails at startup rather than at request time.
package registry
