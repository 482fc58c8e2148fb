package registry

import "github.com/zclconf/go-cty/cty"

// coreKinds is the set of field kinds every application starts with.
var coreKinds = []Kind{
	{Name: "text", Type: cty.String},
	{Name: "textarea", Type: cty.String},
	{Name: "email", Type: cty.String, Rule: "email"},
	{Name: "number", Type: cty.Number, Rule: "numeric"},
	{Name: "toggle", Type: cty.Bool},
	{Name: "select", Type: cty.String},
	{Name: "date", Type: cty.String},
	{Name: "image", Type: cty.String, Media: true},
	{Name: "file", Type: cty.String, Media: true},
}

// NewWithCoreKinds returns a Registry pre-populated with the core field kinds.
func NewWithCoreKinds() *Registry {
	r := New()
	for _, k := range coreKinds {
		r.RegisterKind(k)
	}
	return r
}
