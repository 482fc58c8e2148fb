package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// schemaURL is the synthetic resource name for the compiled rule document.
const schemaURL = "panelforge://rules.json"

// printer renders validator messages. Messages are operator-facing in
// English; localization is the embedding application's concern.
var printer = message.NewPrinter(language.English)

// SchemaEngine is the default Engine: it compiles the rule set into a JSON
// Schema document and evaluates it with santhosh-tekuri/jsonschema.
type SchemaEngine struct{}

// NewSchemaEngine returns a ready engine.
func NewSchemaEngine() *SchemaEngine {
	return &SchemaEngine{}
}

// Validate implements Engine.
func (e *SchemaEngine) Validate(ctx context.Context, rules map[string]string, data map[string]any) (map[string]any, Errors, error) {
	doc, err := buildDocument(rules)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid rule set: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, nil, fmt.Errorf("adding rule schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling rule schema: %w", err)
	}

	instance, err := normalize(data)
	if err != nil {
		return nil, nil, fmt.Errorf("normalizing submitted data: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return data, nil, nil
	}

	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, nil, err
	}
	errs := Errors{}
	collect(verr, errs)
	return nil, errs, nil
}

// normalize round-trips the submitted data through JSON so the validator
// sees the same value shapes regardless of what Go types the transport
// layer produced.
func normalize(data map[string]any) (any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}

// collect walks the validator's error tree down to its leaves, mapping
// instance locations back to dotted field paths. Missing required
// properties are attributed to the missing property's own path, not its
// parent, so errors line up with the rule set that produced them.
func collect(e *jsonschema.ValidationError, errs Errors) {
	if len(e.Causes) > 0 {
		for _, cause := range e.Causes {
			collect(cause, errs)
		}
		return
	}

	base := strings.Join(e.InstanceLocation, ".")
	if required, ok := e.ErrorKind.(*kind.Required); ok {
		for _, missing := range required.Missing {
			path := missing
			if base != "" {
				path = base + "." + missing
			}
			errs.Add(path, "the field is required")
		}
		return
	}
	errs.Add(base, e.ErrorKind.LocalizedString(printer))
}
