package lower

// Options configures one lowering run.
type Options struct {
	// Predicates maps supported comparison predicates to the libfunc name
	// suffix they lower to. Predicates outside the map fall back to
	// FallbackPredicate.
	Predicates map[string]string

	// FallbackPredicate names comparisons outside the supported set.
	FallbackPredicate string
}

// DefaultOptions returns the built-in predicate set: equality only.
func DefaultOptions() Options {
	return Options{
		Predicates:        map[string]string{"eq": "eq"},
		FallbackPredicate: "unsupported",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Predicates == nil {
		o.Predicates = def.Predicates
	}
	if o.FallbackPredicate == "" {
		o.FallbackPredicate = def.FallbackPredicate
	}
	return o
}
