package lower

import (
	"strings"

	"siergen/internal/sierra"
)

// registry deduplicates type and libfunc declarations by canonical name
// while preserving first-discovery order, which downstream consumers rely
// on for reproducible output.
type registry struct {
	typeSeen    map[string]struct{}
	types       []sierra.TypeDeclaration
	libfuncSeen map[string]struct{}
	libfuncs    []sierra.LibfuncDeclaration
}

func newRegistry() *registry {
	return &registry{
		typeSeen:    make(map[string]struct{}),
		libfuncSeen: make(map[string]struct{}),
	}
}

// canonicalTypeName strips quote characters so syntactically different
// encodings of the same type never produce duplicate declarations.
func canonicalTypeName(name string) string {
	return strings.ReplaceAll(name, `"`, "")
}

// declareType inserts a type declaration if absent. Returns true if the
// declaration is new.
func (r *registry) declareType(name string) bool {
	name = canonicalTypeName(name)
	if _, ok := r.typeSeen[name]; ok {
		return false
	}
	r.typeSeen[name] = struct{}{}
	r.types = append(r.types, sierra.TypeDeclaration{Name: name})
	return true
}

// declareLibfunc inserts a libfunc declaration if absent, keyed by the
// concrete name. Returns true if the declaration is new.
func (r *registry) declareLibfunc(name, genericID string, args []sierra.GenericArg) bool {
	if _, ok := r.libfuncSeen[name]; ok {
		return false
	}
	r.libfuncSeen[name] = struct{}{}
	r.libfuncs = append(r.libfuncs, sierra.LibfuncDeclaration{
		Name:      name,
		GenericID: genericID,
		Args:      args,
	})
	return true
}
