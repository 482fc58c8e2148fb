// Package schema holds the raw HCL decoding structures for resource
// definition files. These structs mirror the on-disk block layout; the
// typed, validated representation lives in the model package.
package schema

import "github.com/hashicorp/hcl/v2"

// File represents the top-level structure of a resource definition file,
// containing one or more `resource` blocks.
type File struct {
	Resources []*Resource `hcl:"resource,block"`
}

// Resource represents a single `resource` block. Its body is decoded with
// an explicit hcl.BodySchema by the model package because field attributes
// (types, defaults) need expression-level handling.
type Resource struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}
