package model

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/panelforge/panelforge/internal/ctxlog"
	"github.com/panelforge/panelforge/internal/fsutil"
	"github.com/panelforge/panelforge/internal/schema"
)

// Resource is the typed definition of one administrative screen.
type Resource struct {
	Name string

	// Label is the human-readable screen title, defaulting to the name.
	Label string

	// Fields are the plain top-level leaf fields, in declaration order.
	Fields []*Field

	// Fieldsets are the repeatable field-groups, in declaration order.
	Fieldsets []*Fieldset

	// SourceFile links the resource back to the file it was declared in,
	// for error messages.
	SourceFile string
}

// resourceBodySchema defines the body of a `resource` block.
var resourceBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "label"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "field", LabelNames: []string{"key"}},
		{Type: "fieldset", LabelNames: []string{"key"}},
	},
}

// LoadResourcesRecursively finds and parses all HCL files in a given path
// into resource definitions.
func LoadResourcesRecursively(ctx context.Context, definitionsPath string) ([]*Resource, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading resource definitions from path", "path", definitionsPath)

	files, err := fsutil.FindFilesByExtension(definitionsPath, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("failed to find definition files in %s: %w", definitionsPath, err)
	}
	if len(files) == 0 {
		logger.Warn("No .hcl definition files found in path", "path", definitionsPath)
		return nil, nil
	}

	parser := hclparse.NewParser()
	var resources []*Resource
	for _, file := range files {
		parsed, err := newResourcesFromHCL(ctx, file, parser)
		if err != nil {
			return nil, err
		}
		resources = append(resources, parsed...)
	}

	logger.Info("Resource definitions loaded successfully.", "resources_found", len(resources))
	return resources, nil
}

// newResourcesFromHCL parses a single HCL file and returns the resources
// declared within it.
func newResourcesFromHCL(ctx context.Context, filePath string, parser *hclparse.Parser) ([]*Resource, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	resources, diags := ParseResourceFile(ctx, hclFile, filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("error parsing resource definitions in %s: %w", filePath, diags)
	}
	return resources, nil
}

// ParseResourceFile decodes an HCL file that contains one or more `resource`
// blocks into the typed model.
func ParseResourceFile(ctx context.Context, hclFile *hcl.File, filePath string) ([]*Resource, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing resource definitions from file", "file_path", filePath)

	var allDiags hcl.Diagnostics
	if hclFile == nil {
		allDiags = append(allDiags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		})
		return nil, allDiags
	}

	var parsedFile schema.File
	diags := gohcl.DecodeBody(hclFile.Body, nil, &parsedFile)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	resources := make([]*Resource, 0, len(parsedFile.Resources))
	for _, parsedResource := range parsedFile.Resources {
		bodyContent, contentDiags := parsedResource.Body.Content(resourceBodySchema)
		allDiags = append(allDiags, contentDiags...)
		if contentDiags.HasErrors() {
			continue // Skip this resource but continue parsing others.
		}

		resource := &Resource{
			Name:       parsedResource.Name,
			Label:      parsedResource.Name,
			SourceFile: filePath,
		}

		if attr, exists := bodyContent.Attributes["label"]; exists {
			evalDiags := gohcl.DecodeExpression(attr.Expr, nil, &resource.Label)
			allDiags = append(allDiags, evalDiags...)
		}

		fields, fieldDiags := parseFields(bodyContent.Blocks)
		allDiags = append(allDiags, fieldDiags...)
		resource.Fields = fields

		fieldsets, fsDiags := parseFieldsets(bodyContent.Blocks)
		allDiags = append(allDiags, fsDiags...)
		resource.Fieldsets = fieldsets

		resources = append(resources, resource)
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}

	logger.Debug("Successfully parsed resource definitions", "count", len(resources))
	return resources, allDiags
}
