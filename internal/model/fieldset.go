package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// Fieldset is the typed definition of a repeatable field-group.
type Fieldset struct {
	// Key is the group's attribute name, taken from the HCL block label.
	Key string

	MinItems       int
	MaxItems       int
	Sortable       bool
	Collapsible    bool
	HeadTitle      string
	HeadPreview    string
	AddButtonLabel string

	// PreserveEmpty keeps submitted rows that carry no meaningful data
	// instead of silently dropping them.
	PreserveEmpty bool

	// Schema is the ordered child-field schema shared by every item.
	Schema []SchemaEntry
}

// SchemaEntry is one entry of a fieldset's child schema: either a leaf field
// or a grid-arranged group of fields. A repeatable group can never appear
// here; that is rejected at parse time.
type SchemaEntry struct {
	Field *Field
	Grid  *Grid
}

// Grid is a row of columns, each column holding further leaf fields.
type Grid struct {
	Columns []Column
}

// Column is one cell of a grid row.
type Column struct {
	Span   int
	Fields []*Field
}

// Leaves returns every leaf field of the schema in traversal order: entries
// in declaration order, grids expanded column by column.
func (fs *Fieldset) Leaves() []*Field {
	var leaves []*Field
	for _, entry := range fs.Schema {
		switch {
		case entry.Field != nil:
			leaves = append(leaves, entry.Field)
		case entry.Grid != nil:
			for _, column := range entry.Grid.Columns {
				leaves = append(leaves, column.Fields...)
			}
		}
	}
	return leaves
}

// fieldsetBodySchema is the HCL schema for the body of a `fieldset` block.
// The nested `fieldset` block type is declared here deliberately so that
// nesting is caught by our own diagnostic instead of a generic
// "unsupported block" error.
var fieldsetBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "min_items"},
		{Name: "max_items"},
		{Name: "sortable"},
		{Name: "collapsible"},
		{Name: "head_title"},
		{Name: "head_preview"},
		{Name: "add_button_label"},
		{Name: "preserve_empty_items"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"key"}},
		{Type: "grid"},
		{Type: "fieldset", LabelNames: []string{"key"}},
	},
}

var gridBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "column"},
	},
}

var columnBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "span"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"key"}},
		{Type: "fieldset", LabelNames: []string{"key"}},
	},
}

// parseFieldsets decodes all `fieldset` blocks from the given block list.
func parseFieldsets(blocks hcl.Blocks) ([]*Fieldset, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var fieldsets []*Fieldset
	seen := map[string]bool{}

	for _, block := range blocks.OfType("fieldset") {
		key := block.Labels[0]

		if seen[key] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate fieldset definition",
				Detail:   fmt.Sprintf("A fieldset named '%s' has already been defined in this resource.", key),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[key] = true

		fieldset, fsDiags := parseFieldsetBlock(key, block)
		diags = append(diags, fsDiags...)
		if fsDiags.HasErrors() {
			continue
		}
		fieldsets = append(fieldsets, fieldset)
	}

	return fieldsets, diags
}

func parseFieldsetBlock(key string, block *hcl.Block) (*Fieldset, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	bodyContent, contentDiags := block.Body.Content(fieldsetBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	// A repeatable group may never contain another repeatable group.
	for _, nested := range bodyContent.Blocks.OfType("fieldset") {
		diags = append(diags, nestedFieldsetDiagnostic(key, nested))
	}
	if diags.HasErrors() {
		return nil, diags
	}

	fieldset := &Fieldset{Key: key}

	intAttrs := map[string]*int{
		"min_items": &fieldset.MinItems,
		"max_items": &fieldset.MaxItems,
	}
	for name, target := range intAttrs {
		if attr, exists := bodyContent.Attributes[name]; exists {
			evalDiags := gohcl.DecodeExpression(attr.Expr, nil, target)
			diags = append(diags, evalDiags...)
		}
	}

	boolAttrs := map[string]*bool{
		"sortable":             &fieldset.Sortable,
		"collapsible":          &fieldset.Collapsible,
		"preserve_empty_items": &fieldset.PreserveEmpty,
	}
	for name, target := range boolAttrs {
		if attr, exists := bodyContent.Attributes[name]; exists {
			evalDiags := gohcl.DecodeExpression(attr.Expr, nil, target)
			diags = append(diags, evalDiags...)
		}
	}

	stringAttrs := map[string]*string{
		"head_title":       &fieldset.HeadTitle,
		"head_preview":     &fieldset.HeadPreview,
		"add_button_label": &fieldset.AddButtonLabel,
	}
	for name, target := range stringAttrs {
		if attr, exists := bodyContent.Attributes[name]; exists {
			evalDiags := gohcl.DecodeExpression(attr.Expr, nil, target)
			diags = append(diags, evalDiags...)
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}

	// Child schema entries keep declaration order: a block list interleaves
	// `field` and `grid` blocks the way the operator wrote them.
	for _, child := range bodyContent.Blocks {
		switch child.Type {
		case "field":
			fields, fieldDiags := parseFields(hcl.Blocks{child})
			diags = append(diags, fieldDiags...)
			for _, f := range fields {
				fieldset.Schema = append(fieldset.Schema, SchemaEntry{Field: f})
			}
		case "grid":
			grid, gridDiags := parseGridBlock(key, child)
			diags = append(diags, gridDiags...)
			if grid != nil {
				fieldset.Schema = append(fieldset.Schema, SchemaEntry{Grid: grid})
			}
		}
	}

	if diags.HasErrors() {
		return nil, diags
	}

	// Leaf keys must be unique across the whole schema, including leaves
	// inside grid columns.
	seenLeaf := map[string]bool{}
	for _, leaf := range fieldset.Leaves() {
		if seenLeaf[leaf.Key] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate field definition",
				Detail:   fmt.Sprintf("A field named '%s' has already been defined in fieldset '%s'.", leaf.Key, key),
				Subject:  &block.DefRange,
			})
		}
		seenLeaf[leaf.Key] = true
	}
	if diags.HasErrors() {
		return nil, diags
	}

	if len(fieldset.Schema) == 0 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Empty fieldset schema",
			Detail:   fmt.Sprintf("The fieldset '%s' declares no child fields.", key),
			Subject:  &block.DefRange,
		})
		return nil, diags
	}

	return fieldset, diags
}

func parseGridBlock(fieldsetKey string, block *hcl.Block) (*Grid, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	bodyContent, contentDiags := block.Body.Content(gridBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	grid := &Grid{}
	for _, columnBlock := range bodyContent.Blocks.OfType("column") {
		columnContent, columnDiags := columnBlock.Body.Content(columnBodySchema)
		diags = append(diags, columnDiags...)
		if columnDiags.HasErrors() {
			continue
		}

		for _, nested := range columnContent.Blocks.OfType("fieldset") {
			diags = append(diags, nestedFieldsetDiagnostic(fieldsetKey, nested))
		}
		if diags.HasErrors() {
			continue
		}

		column := Column{Span: 12}
		if attr, exists := columnContent.Attributes["span"]; exists {
			evalDiags := gohcl.DecodeExpression(attr.Expr, nil, &column.Span)
			diags = append(diags, evalDiags...)
		}

		fields, fieldDiags := parseFields(columnContent.Blocks)
		diags = append(diags, fieldDiags...)
		column.Fields = fields

		grid.Columns = append(grid.Columns, column)
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return grid, diags
}

// nestedFieldsetDiagnostic produces the specific error for a repeatable
// group placed inside another repeatable group's schema.
func nestedFieldsetDiagnostic(outerKey string, nested *hcl.Block) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Nested fieldset",
		Detail: fmt.Sprintf(
			"The fieldset '%s' contains the fieldset '%s', but a repeatable field-group cannot contain another repeatable field-group. Move '%s' to the resource level.",
			outerKey, nested.Labels[0], nested.Labels[0],
		),
		Subject: &nested.DefRange,
	}
}
