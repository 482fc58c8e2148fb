// Package app contains the core application wiring. It configures the
// logger, loads and validates resource definitions, selects the record
// store, and exposes the save workflow, decoupled from any specific
// entrypoint like a CLI or server.
package app
