package engine

import (
	"sort"
	"sync"
)

// OperatorFunc is a binary comparison predicate: it reports whether the
// answer value satisfies the operator with respect to the reference
// value from the branch key. A returned error (e.g. a type mismatch) is
// treated as a non-match by branch selection.
type OperatorFunc func(value, reference interface{}) (bool, error)

// Registry holds the set of known comparison operators usable in branch
// keys. Registration is guarded by a mutex: new operators may be added
// at runtime, but if evaluations run concurrently, registration should
// happen during an initialization phase before concurrent reads begin.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]OperatorFunc
}

// NewRegistry creates a registry populated with the built-in operator set.
func NewRegistry() *Registry {
	return &Registry{
		ops: builtinOperators(),
	}
}

// Register stores or overwrites the predicate for symbol.
func (r *Registry) Register(symbol string, fn OperatorFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[symbol] = fn
}

// Lookup returns the predicate for symbol, or an
// *UnsupportedOperatorError if the symbol was never registered.
func (r *Registry) Lookup(symbol string) (OperatorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.ops[symbol]
	if !ok {
		return nil, &UnsupportedOperatorError{Symbol: symbol}
	}
	return fn, nil
}

// Symbols returns the registered operator symbols, sorted.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbols := make([]string, 0, len(r.ops))
	for symbol := range r.ops {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// defaultRegistry is the process-wide registry. Registrations persist
// for the process lifetime; there is no teardown.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide operator registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register stores or overwrites the predicate for symbol in the
// process-wide registry.
func Register(symbol string, fn OperatorFunc) {
	defaultRegistry.Register(symbol, fn)
}
