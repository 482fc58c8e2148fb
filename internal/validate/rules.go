package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// emailPattern keeps email checking at the pragmatic has-one-at-sign level;
// real verification happens out of band.
const emailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

// rule is one parsed rule expression, e.g. "required|min:3".
type rule struct {
	required bool
	typ      string // "", "string", "numeric", "integer", "boolean", "array"
	min      *float64
	max      *float64
	email    bool
	in       []string
}

// parseRule parses a pipe-separated rule expression. Unknown tokens are
// definition errors.
func parseRule(expr string) (rule, error) {
	var r rule
	for _, token := range strings.Split(expr, "|") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		name, arg, hasArg := strings.Cut(token, ":")
		switch name {
		case "required":
			r.required = true
		case "string", "numeric", "integer", "boolean", "array":
			if r.typ != "" && r.typ != name {
				return rule{}, fmt.Errorf("conflicting type rules %q and %q", r.typ, name)
			}
			r.typ = name
		case "email":
			r.email = true
		case "min", "max":
			if !hasArg {
				return rule{}, fmt.Errorf("rule %q requires an argument", name)
			}
			n, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return rule{}, fmt.Errorf("rule %q has a non-numeric argument %q", name, arg)
			}
			if name == "min" {
				r.min = &n
			} else {
				r.max = &n
			}
		case "in":
			if !hasArg || arg == "" {
				return rule{}, fmt.Errorf("rule \"in\" requires a comma-separated argument list")
			}
			r.in = strings.Split(arg, ",")
		default:
			return rule{}, fmt.Errorf("unknown rule token %q", name)
		}
	}
	return r, nil
}

// schema converts the rule into a JSON Schema fragment for one field. The
// meaning of min/max follows the field's type: item counts for arrays,
// numeric bounds for numbers, string length otherwise.
func (r rule) schema() map[string]any {
	s := map[string]any{}

	switch r.typ {
	case "array":
		s["type"] = "array"
		if r.min != nil {
			s["minItems"] = int(*r.min)
		}
		if r.max != nil {
			s["maxItems"] = int(*r.max)
		}
	case "numeric":
		s["type"] = "number"
		if r.min != nil {
			s["minimum"] = *r.min
		}
		if r.max != nil {
			s["maximum"] = *r.max
		}
	case "integer":
		s["type"] = "integer"
		if r.min != nil {
			s["minimum"] = *r.min
		}
		if r.max != nil {
			s["maximum"] = *r.max
		}
	case "boolean":
		s["type"] = "boolean"
	default:
		s["type"] = "string"
		if r.min != nil {
			s["minLength"] = int(*r.min)
		}
		if r.max != nil {
			s["maxLength"] = int(*r.max)
		}
		if r.email {
			s["pattern"] = emailPattern
		}
	}

	if len(r.in) > 0 {
		enum := make([]any, len(r.in))
		for i, v := range r.in {
			enum[i] = v
		}
		s["enum"] = enum
	}
	return s
}

// buildDocument compiles a path-keyed rule set into one JSON Schema
// document. Paths are dotted and may contain wildcard segments (`*`), each
// of which maps to the items of an array of objects.
func buildDocument(rules map[string]string) (map[string]any, error) {
	root := map[string]any{"type": "object"}

	// Deterministic build order keeps merge conflicts reproducible.
	paths := make([]string, 0, len(rules))
	for path := range rules {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		r, err := parseRule(rules[path])
		if err != nil {
			return nil, fmt.Errorf("rule for %q: %w", path, err)
		}
		if err := attach(root, strings.Split(path, "."), r); err != nil {
			return nil, fmt.Errorf("rule for %q: %w", path, err)
		}
	}
	return root, nil
}

// attach walks the path segments from the root object schema, creating
// object properties and array items along the way, and attaches the rule's
// fragment at the final segment.
func attach(objectSchema map[string]any, segments []string, r rule) error {
	if len(segments) == 0 || segments[0] == "*" {
		return fmt.Errorf("path must start with a property segment")
	}

	name := segments[0]
	props, ok := objectSchema["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		objectSchema["properties"] = props
	}

	if len(segments) == 1 {
		field, ok := props[name].(map[string]any)
		if !ok {
			field = map[string]any{}
			props[name] = field
		}
		// Merge so a group-level array rule and wildcard child rules can
		// target the same property.
		for k, v := range r.schema() {
			field[k] = v
		}
		if r.required {
			objectSchema["required"] = appendUnique(objectSchema["required"], name)
		}
		return nil
	}

	if segments[1] != "*" {
		return fmt.Errorf("nested paths must traverse a wildcard segment")
	}

	arr, ok := props[name].(map[string]any)
	if !ok {
		arr = map[string]any{}
		props[name] = arr
	}
	arr["type"] = "array"
	items, ok := arr["items"].(map[string]any)
	if !ok {
		items = map[string]any{"type": "object"}
		arr["items"] = items
	}
	return attach(items, segments[2:], r)
}

func appendUnique(existing any, name string) []any {
	list, _ := existing.([]any)
	for _, entry := range list {
		if entry == name {
			return list
		}
	}
	return append(list, name)
}

