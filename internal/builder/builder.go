package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/fieldset"
	"github.com/panelforge/panelforge/internal/hclutil"
	"github.com/panelforge/panelforge/internal/model"
	"github.com/panelforge/panelforge/internal/registry"
	"github.com/panelforge/panelforge/internal/store"
)

// Resource is the runtime form model for one administrative screen.
type Resource struct {
	Name   string
	Fields []Field
	Groups []*fieldset.Fieldset
}

// Field is a plain top-level leaf with its kind resolved.
type Field struct {
	Key   string
	Kind  registry.Kind
	Rules string
	Label string

	// Default is the native Go rendition of the declared default literal.
	Default any
}

// Rules builds the complete validation-rule set for the resource: plain
// field rules plus every group's rule set.
func (r *Resource) Rules() map[string]string {
	rules := make(map[string]string)
	for _, f := range r.Fields {
		if f.Kind.Media || f.Rules == "" {
			continue
		}
		rules[f.Key] = f.Rules
	}
	for _, g := range r.Groups {
		for path, rule := range g.Rules() {
			rules[path] = rule
		}
	}
	return rules
}

// Group returns the fieldset with the given key, if any.
func (r *Resource) Group(key string) (*fieldset.Fieldset, bool) {
	for _, g := range r.Groups {
		if g.Key() == key {
			return g, true
		}
	}
	return nil, false
}

// Build resolves the parsed definitions against the registry and assembles
// runtime resources. media may be nil; fieldsets then run without existing-
// attachment resolution.
func Build(ctx context.Context, resources []*model.Resource, reg *registry.Registry, media store.AttachmentStore) ([]*Resource, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building runtime resources.", "count", len(resources))

	built := make([]*Resource, 0, len(resources))
	for _, res := range resources {
		r := &Resource{Name: res.Name}

		for _, f := range res.Fields {
			resolved, err := resolveField(f, reg)
			if err != nil {
				return nil, fmt.Errorf("resource %q: %w", res.Name, err)
			}
			r.Fields = append(r.Fields, resolved)
		}

		for _, def := range res.Fieldsets {
			group, err := buildFieldset(def, reg, media)
			if err != nil {
				return nil, fmt.Errorf("resource %q: %w", res.Name, err)
			}
			r.Groups = append(r.Groups, group)
		}

		built = append(built, r)
	}

	logger.Debug("Runtime resources built successfully.")
	return built, nil
}

func buildFieldset(def *model.Fieldset, reg *registry.Registry, media store.AttachmentStore) (*fieldset.Fieldset, error) {
	schema := make([]fieldset.SchemaEntry, 0, len(def.Schema))
	for _, entry := range def.Schema {
		switch {
		case entry.Field != nil:
			leaf, err := resolveLeaf(entry.Field, reg)
			if err != nil {
				return nil, fmt.Errorf("fieldset %q: %w", def.Key, err)
			}
			schema = append(schema, fieldset.SchemaEntry{Leaf: &leaf})
		case entry.Grid != nil:
			grid := fieldset.Grid{}
			for _, column := range entry.Grid.Columns {
				built := fieldset.Column{Span: column.Span}
				for _, f := range column.Fields {
					leaf, err := resolveLeaf(f, reg)
					if err != nil {
						return nil, fmt.Errorf("fieldset %q: %w", def.Key, err)
					}
					built.Leaves = append(built.Leaves, leaf)
				}
				grid.Columns = append(grid.Columns, built)
			}
			schema = append(schema, fieldset.SchemaEntry{Grid: &grid})
		}
	}

	if err := checkHeadBinding(def, schema); err != nil {
		return nil, err
	}

	opts := []fieldset.Option{
		fieldset.WithMinItems(def.MinItems),
		fieldset.WithMaxItems(def.MaxItems),
		fieldset.WithSortable(def.Sortable),
		fieldset.WithCollapsible(def.Collapsible),
		fieldset.WithHeadTitle(def.HeadTitle),
		fieldset.WithHeadPreview(def.HeadPreview),
		fieldset.WithAddButtonLabel(def.AddButtonLabel),
		fieldset.WithPreserveEmptyItems(def.PreserveEmpty),
	}
	if media != nil {
		opts = append(opts, fieldset.WithMediaStore(media))
	}
	return fieldset.New(def.Key, schema, opts...)
}

func resolveField(f *model.Field, reg *registry.Registry) (Field, error) {
	kind, ok := reg.Kind(f.Kind)
	if !ok {
		return Field{}, unknownKindError(f, reg)
	}

	resolved := Field{
		Key:   f.Key,
		Kind:  kind,
		Rules: mergeRules(kind.Rule, f.Rules),
		Label: f.Label,
	}
	if f.Default != nil {
		resolved.Default = hclutil.GoValue(*f.Default)
	}
	return resolved, nil
}

func resolveLeaf(f *model.Field, reg *registry.Registry) (fieldset.Leaf, error) {
	kind, ok := reg.Kind(f.Kind)
	if !ok {
		return fieldset.Leaf{}, unknownKindError(f, reg)
	}

	leaf := fieldset.Leaf{
		Key:   f.Key,
		Kind:  kind,
		Rules: mergeRules(kind.Rule, f.Rules),
		Label: f.Label,
	}
	if f.Default != nil {
		leaf.Default = hclutil.GoValue(*f.Default)
	}
	return leaf, nil
}

// checkHeadBinding verifies that head_title/head_preview bindings point at
// leaves that actually exist in the schema.
func checkHeadBinding(def *model.Fieldset, schema []fieldset.SchemaEntry) error {
	known := map[string]bool{}
	for _, entry := range schema {
		switch {
		case entry.Leaf != nil:
			known[entry.Leaf.Key] = true
		case entry.Grid != nil:
			for _, column := range entry.Grid.Columns {
				for _, leaf := range column.Leaves {
					known[leaf.Key] = true
				}
			}
		}
	}

	for _, binding := range []struct{ name, key string }{
		{"head_title", def.HeadTitle},
		{"head_preview", def.HeadPreview},
	} {
		if binding.key != "" && !known[binding.key] {
			return fmt.Errorf("fieldset %q: %s references unknown field %q", def.Key, binding.name, binding.key)
		}
	}
	return nil
}

// mergeRules prepends a kind's implicit rule fragment to the field's own
// rules, dropping duplicates.
func mergeRules(kindRule, fieldRules string) string {
	if kindRule == "" {
		return fieldRules
	}
	if fieldRules == "" {
		return kindRule
	}
	for _, token := range strings.Split(fieldRules, "|") {
		if token == kindRule {
			return fieldRules
		}
	}
	return kindRule + "|" + fieldRules
}

func unknownKindError(f *model.Field, reg *registry.Registry) error {
	return fmt.Errorf("field %q uses unknown kind %q (registered kinds: %s)",
		f.Key, f.Kind, strings.Join(reg.Names(), ", "))
}
