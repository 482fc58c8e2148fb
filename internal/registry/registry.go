package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Kind describes one field kind available to resource definitions.
type Kind struct {
	// Name is the identifier used in the `kind` attribute of a field block.
	Name string

	// Type is the value type a field of this kind carries.
	Type cty.Type

	// Rule is an implicit validation fragment merged in front of any rules
	// declared on the field itself (e.g. "email" for the email kind).
	Rule string

	// Media marks attachment-bearing kinds. Their persisted value is a
	// collection name, not the binary data itself.
	Media bool
}

// Registry stores the known field kinds.
type Registry struct {
	kinds map[string]Kind
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// RegisterKind adds a field kind. Registering the same name twice is a
// programmer error.
func (r *Registry) RegisterKind(k Kind) {
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("field kind '%s' already registered", k.Name))
	}
	slog.Debug("Registering field kind.", "name", k.Name, "media", k.Media)
	r.kinds[k.Name] = k
}

// Kind looks up a field kind by name.
func (r *Registry) Kind(name string) (Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Names returns the registered kind names in sorted order, for error
// messages and diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
