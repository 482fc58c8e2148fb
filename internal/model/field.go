package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/panelforge/panelforge/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
)

// Field is the typed definition of a single leaf field.
type Field struct {
	// Key is the attribute name this field reads and writes, taken from the
	// HCL block label.
	Key string

	// Kind names the field kind in the registry (e.g. "text", "image").
	Kind string

	// Type is the value type declared with the optional `type` attribute.
	// cty.NilType means the kind's default type applies.
	Type cty.Type

	// Rules is the validation rule fragment declared on the field, e.g.
	// "required|min:3".
	Rules string

	// Label is an optional human-readable label for rendering.
	Label string

	// Default is an optional literal used when no value is present. If set,
	// it conforms to Type (checked at parse time).
	Default *cty.Value
}

// fieldBodySchema is the HCL schema for the body of a `field` block.
var fieldBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `kind` is required, but we check for its existence manually to
		// provide a better error message.
		{Name: "kind"},
		{Name: "type"},
		{Name: "rules"},
		{Name: "label"},
		{Name: "default"},
	},
}

// parseFields decodes all `field` blocks from the given block list, in
// declaration order.
func parseFields(blocks hcl.Blocks) ([]*Field, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var fields []*Field
	seen := map[string]bool{}

	for _, block := range blocks.OfType("field") {
		// The schema guarantees us one label.
		key := block.Labels[0]

		if seen[key] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate field definition",
				Detail:   fmt.Sprintf("A field named '%s' has already been defined in this scope.", key),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[key] = true

		field, fieldDiags := parseFieldBlock(key, block)
		diags = append(diags, fieldDiags...)
		if fieldDiags.HasErrors() {
			continue
		}
		fields = append(fields, field)
	}

	return fields, diags
}

func parseFieldBlock(key string, block *hcl.Block) (*Field, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	bodyContent, contentDiags := block.Body.Content(fieldBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	kindAttr, exists := bodyContent.Attributes["kind"]
	if !exists {
		missingItemRange := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'kind' attribute",
			Detail:   fmt.Sprintf("The 'kind' attribute is required for field '%s'.", key),
			Subject:  &missingItemRange,
		})
		return nil, diags
	}

	field := &Field{Key: key, Type: cty.NilType}

	evalDiags := gohcl.DecodeExpression(kindAttr.Expr, nil, &field.Kind)
	diags = append(diags, evalDiags...)
	if evalDiags.HasErrors() {
		return nil, diags
	}

	if attr, exists := bodyContent.Attributes["type"]; exists {
		fieldType, typeDiags := hclutil.TypeFromExpr(attr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			return nil, diags
		}
		field.Type = fieldType
	}

	if attr, exists := bodyContent.Attributes["rules"]; exists {
		evalDiags := gohcl.DecodeExpression(attr.Expr, nil, &field.Rules)
		diags = append(diags, evalDiags...)
	}
	if attr, exists := bodyContent.Attributes["label"]; exists {
		evalDiags := gohcl.DecodeExpression(attr.Expr, nil, &field.Label)
		diags = append(diags, evalDiags...)
	}

	if attr, exists := bodyContent.Attributes["default"]; exists {
		// A nil eval context is used because defaults must be literal values.
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			return nil, diags
		}

		// Ensure the default conforms to the declared type, when one is set.
		if field.Type != cty.NilType && !val.Type().Equals(field.Type) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid default value type",
				Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its declared type, '%s'.", key, field.Type.FriendlyName()),
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		field.Default = &val
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return field, diags
}
