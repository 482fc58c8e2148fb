// Package builder turns parsed resource definitions into the runtime
// objects the request pipeline works with.
//
// The model package gives us a faithful, typed rendition of what the
// operator wrote; this package resolves it against the field-kind registry
// and assembles the Fieldset facades. Mismatches between definitions and
// the registry (an unknown field kind, an invalid head binding) are caught
// here, at startup, so request handling can assume a well-formed form
// model.
package builder
