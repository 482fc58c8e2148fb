package fieldset

import (
	"fmt"
	"strings"
)

// Rules builds the validation-rule set for the group, keyed by field path:
// a group-level rule applied to the array as a whole, plus one wildcard rule
// per child leaf (`group.*.child`) so the validation engine checks every
// surviving row uniformly.
//
// The group-level min-count rule is evaluated against the post-filter item
// list, which is what lets a resource require "at least n non-empty rows"
// while users still abandon empty rows without validation noise.
//
// Attachment-bearing children are omitted from the wildcard set: attachments
// validate via count and type policy in the media manager and the UI, not by
// engine-level value rules.
func (fs *Fieldset) Rules() map[string]string {
	rules := make(map[string]string)

	group := []string{"array"}
	if fs.minItems > 0 {
		group = append([]string{"required"}, group...)
		group = append(group, fmt.Sprintf("min:%d", fs.minItems))
	}
	if fs.maxItems > 0 {
		group = append(group, fmt.Sprintf("max:%d", fs.maxItems))
	}
	rules[fs.key] = strings.Join(group, "|")

	for _, leaf := range fs.leaves() {
		if leaf.Kind.Media || leaf.Rules == "" {
			continue
		}
		rules[fs.key+".*."+leaf.Key] = leaf.Rules
	}
	return rules
}
