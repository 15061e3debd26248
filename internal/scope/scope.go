package scope

// Scope is the lifetime policy governing how long a produced instance
// is reused by the engine.
type Scope int

const (
	// Singleton instances live for the lifetime of the engine.
	Singleton Scope = iota
	// Contextual instances live for the lifetime of one entered scope.
	Contextual
	// Transient instances are constructed fresh on every resolution
	// and never cached.
	Transient
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Contextual:
		return "contextual"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the declared scopes.
func (s Scope) Valid() bool {
	return s >= Singleton && s <= Transient
}

// Cacheable reports whether instances of this scope are retained in a
// scope context's instance cache.
func (s Scope) Cacheable() bool {
	return s == Singleton || s == Contextual
}
