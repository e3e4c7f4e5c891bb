package registry

// Host is the interface for struct-based host surfaces.
// All exported methods (except Namespace) are registered as boundary
// functions under their kebab-case names.
type Host interface {
	// Namespace returns the interface name (e.g., "demo:fixture/math@1.0.0").
	Namespace() string
}

// AsyncHost extends Host with async function declarations.
// Functions listed by AsyncFunctions() dispatch onto their own goroutine
// and return a *future.Future from Call.
type AsyncHost interface {
	Host
	AsyncFunctions() []string
}

// ExplicitRegistrar allows hosts to provide exact boundary function names
// when automatic PascalCase-to-kebab-case conversion doesn't apply
// (e.g., "[method]counter.value").
type ExplicitRegistrar interface {
	Register() map[string]any
}
