package wire

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores compiled strategies: contextless ones by type, contextual
// ones by full key. Each key holds at most one strategy.
//
// Registry is safe for concurrent use; the factory is its only writer.
type Registry struct {
	mu        sync.RWMutex
	byType    map[ContextKey]Strategy
	byContext map[ContextKey]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:    make(map[ContextKey]Strategy),
		byContext: make(map[ContextKey]Strategy),
	}
}

// Has reports whether a strategy is registered for key.
func (r *Registry) Has(key ContextKey) bool {
	_, ok := r.lookup(key)
	return ok
}

// Get returns the strategy registered for key.
func (r *Registry) Get(key ContextKey) (Strategy, error) {
	if s, ok := r.lookup(key); ok {
		return s, nil
	}
	return nil, &LookupError{Key: key}
}

// HasType reports whether a contextless strategy is registered for the type
// of key, ignoring its flags.
func (r *Registry) HasType(key ContextKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[typeKey(key)]
	return ok
}

// GetType returns the contextless strategy registered for the type of key.
func (r *Registry) GetType(key ContextKey) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byType[typeKey(key)]; ok {
		return s, nil
	}
	return nil, &LookupError{Key: typeKey(key)}
}

// lookup resolves contextless keys by type and contextual keys by full key.
// A contextual miss falls back to a contextless custom strategy, which
// ignores member context by definition.
func (r *Registry) lookup(key ContextKey) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if key.Contextless() {
		s, ok := r.byType[key]
		return s, ok
	}
	if s, ok := r.byContext[key]; ok {
		return s, true
	}
	if s, ok := r.byType[typeKey(key)]; ok {
		if _, custom := s.(*customStrategy); custom {
			return s, true
		}
	}
	return nil, false
}

// RegisterType registers a contextless strategy under its type.
func (r *Registry) RegisterType(s Strategy) error {
	key := ContextKey{Type: s.Type()}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byType[key]; ok {
		return newConfigError(ErrDuplicate, s.Type(), "contextless")
	}
	r.byType[key] = s
	return nil
}

// RegisterContext registers a contextual strategy under its full key.
func (r *Registry) RegisterContext(flags ContextFlags, specific SpecificKey, s Strategy) error {
	key := ContextKey{Flags: flags, Specific: specific, Type: s.Type()}
	if key.Contextless() {
		return newConfigError(ErrInternal, s.Type(), "contextual strategy with empty context")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byContext[key]; ok {
		return newConfigError(ErrDuplicate, s.Type(), key.String())
	}
	r.byContext[key] = s
	return nil
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType) + len(r.byContext)
}

// Keys returns every registered key in a stable order.
func (r *Registry) Keys() []ContextKey {
	r.mu.RLock()
	keys := make([]ContextKey, 0, len(r.byType)+len(r.byContext))
	for k := range r.byType {
		keys = append(keys, k)
	}
	for k := range r.byContext {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keyOrder(keys[i]) < keyOrder(keys[j])
	})
	return keys
}

func typeKey(key ContextKey) ContextKey {
	return ContextKey{Type: key.Type}
}

func keyOrder(k ContextKey) string {
	return fmt.Sprintf("%s/%s/%08x/%08x", k.Type.PkgPath(), k.Type.String(), uint32(k.Flags), uint32(k.Specific))
}
