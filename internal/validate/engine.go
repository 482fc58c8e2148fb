// Package validate implements the validation-engine contract the form layer
// consumes: a rule set keyed by field path (with `group.*.child` wildcards)
// plus submitted data in, validated values or per-path error messages out.
//
// The default engine compiles the rule set into a JSON Schema document and
// evaluates it with santhosh-tekuri/jsonschema. Rule-set mistakes (unknown
// rule tokens, malformed paths) are definition errors and fail at compile
// time, never at request time.
package validate

import (
	"context"
	"sort"
)

// Errors maps dotted field paths (`title`, `gallery.0.caption`) to their
// messages. Row indices refer to the filtered, normalized item list the
// rules were checked against, so error targeting matches what is re-rendered.
type Errors map[string][]string

// Any reports whether at least one path has errors.
func (e Errors) Any() bool { return len(e) > 0 }

// Add appends a message for a path.
func (e Errors) Add(path, message string) {
	e[path] = append(e[path], message)
}

// Paths returns the error paths in sorted order.
func (e Errors) Paths() []string {
	paths := make([]string, 0, len(e))
	for path := range e {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Engine validates submitted data against a path-keyed rule set.
type Engine interface {
	// Validate returns the validated values and the per-path errors. The
	// returned error reports engine failures (e.g. an invalid rule set),
	// not user-input violations.
	Validate(ctx context.Context, rules map[string]string, data map[string]any) (map[string]any, Errors, error)
}
