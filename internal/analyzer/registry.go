package analyzer

// Capability advertises that files with Extension are handled by Language.
type Capability struct {
	Extension string `json:"extension" yaml:"extension"`
	Language  string `json:"language" yaml:"language"`
}

// Registry dispatches a file extension to the first analyzer that claims it.
// The fallback analyzer is always consulted last, so Select never fails.
type Registry struct {
	analyzers []Analyzer
}

// NewRegistry builds a registry from analyzers in priority order, followed by
// fallback. Registration order is the tie-break when two analyzers claim the
// same extension.
func NewRegistry(fallback Analyzer, analyzers ...Analyzer) *Registry {
	ordered := make([]Analyzer, 0, len(analyzers)+1)
	ordered = append(ordered, analyzers...)
	ordered = append(ordered, fallback)
	return &Registry{analyzers: ordered}
}

// DefaultRegistry returns a new registry with every built-in analyzer.
// TypeScript is registered ahead of JavaScript, its untyped subset.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewGenericAnalyzer(),
		NewPythonAnalyzer(),
		NewGoAnalyzer(),
		NewTypeScriptAnalyzer(),
		NewJavaScriptAnalyzer(),
	)
}

// Select returns the analyzer for ext.
func (r *Registry) Select(ext string) Analyzer {
	for _, a := range r.analyzers {
		if a.CanAnalyze(ext) {
			return a
		}
	}
	return r.Fallback()
}

// ForFile selects the analyzer for filename's extension.
func (r *Registry) ForFile(filename string) Analyzer {
	return r.Select(ExtOf(filename))
}

// Fallback returns the catch-all analyzer.
func (r *Registry) Fallback() Analyzer {
	return r.analyzers[len(r.analyzers)-1]
}

// Analyzers returns the registered analyzers in dispatch order.
func (r *Registry) Analyzers() []Analyzer {
	out := make([]Analyzer, len(r.analyzers))
	copy(out, r.analyzers)
	return out
}

// Capabilities lists every claimed extension with its language, in dispatch
// order. An extension shadowed by an earlier analyzer is listed once.
func (r *Registry) Capabilities() []Capability {
	var caps []Capability
	seen := make(map[string]bool)
	for _, a := range r.analyzers {
		for _, ext := range a.Extensions() {
			if seen[ext] {
				continue
			}
			seen[ext] = true
			caps = append(caps, Capability{Extension: ext, Language: a.Language()})
		}
	}
	return caps
}
