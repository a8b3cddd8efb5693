package wire

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Factory compiles a type context and every dependency it reaches into the
// registry. Compilation is all or nothing: strategies are staged and
// committed only when the whole graph has been compiled and linked.
//
// A Factory is not safe for concurrent use; the Service serializes calls.
type Factory struct {
	registry *Registry
	types    *TypeTable
	handlers []Handler
	logger   *zap.Logger
}

// NewFactory returns a factory writing into registry.
func NewFactory(registry *Registry, types *TypeTable, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{
		registry: registry,
		types:    types,
		handlers: defaultHandlers(types),
		logger:   logger,
	}
}

// Create compiles ctx and registers it together with its missing
// dependencies. It fails with ErrDuplicate when the root key is already
// registered.
func (f *Factory) Create(ctx context.Context, tc *TypeContext) (Strategy, error) {
	key, err := f.buildKey(tc)
	if err != nil {
		return nil, err
	}
	if f.registry.Has(key) {
		return nil, newConfigError(ErrDuplicate, tc.Type, key.String())
	}

	b := &batch{
		factory: f,
		staged:  make(map[ContextKey]Strategy),
		pending: map[ContextKey]struct{}{key: {}},
	}

	// Custom strategies have no dependencies.
	if !f.types.isCustom(tc.Type) {
		var discovered []*TypeContext
		if err := f.discover(tc, b.pending, &discovered); err != nil {
			return nil, err
		}
		// Deepest dependencies first.
		for i := len(discovered) - 1; i >= 0; i-- {
			if _, err := b.compile(ctx, discovered[i]); err != nil {
				return nil, err
			}
		}
	}

	root, err := b.compile(ctx, tc)
	if err != nil {
		return nil, err
	}
	if err := b.link(); err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		return nil, err
	}
	return root, nil
}

func (f *Factory) buildKey(tc *TypeContext) (ContextKey, error) {
	if tc.Type == nil {
		return ContextKey{}, newConfigError(ErrInternal, nil, "nil target type")
	}
	return tc.BuildKey(f.types.isCustom(tc.Type))
}

// discover walks the subcontexts of tc depth-first. Each key not yet
// registered or visited is appended to out once.
func (f *Factory) discover(tc *TypeContext, visited map[ContextKey]struct{}, out *[]*TypeContext) error {
	if f.types.isCustom(tc.Type) {
		return nil
	}
	h, err := selectHandler(f.handlers, tc)
	if err != nil {
		return err
	}
	subs, err := h.Subcontexts(tc)
	if err != nil {
		return err
	}

	var fresh []*TypeContext
	for _, sub := range subs {
		key, err := f.buildKey(sub)
		if err != nil {
			return err
		}
		if f.registry.Has(key) {
			continue
		}
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}
		fresh = append(fresh, sub)
		*out = append(*out, sub)
	}

	for _, sub := range fresh {
		if err := f.discover(sub, visited, out); err != nil {
			return err
		}
	}
	return nil
}

// batch holds one Create call's compiled but uncommitted strategies.
type batch struct {
	factory *Factory
	order   []ContextKey
	staged  map[ContextKey]Strategy
	pending map[ContextKey]struct{}
	refs    []*refStrategy
}

// Resolve returns the strategy serving ctx from the registry or the batch.
// A dependency of the batch that is not compiled yet resolves to a reference
// bound by link.
func (b *batch) Resolve(tc *TypeContext) (Strategy, error) {
	key, err := b.factory.buildKey(tc)
	if err != nil {
		return nil, err
	}
	if s, ok := b.factory.registry.lookup(key); ok {
		return s, nil
	}
	if s, ok := b.staged[key]; ok {
		return s, nil
	}
	if _, ok := b.pending[key]; ok {
		ref := &refStrategy{key: key}
		b.refs = append(b.refs, ref)
		return ref, nil
	}
	return nil, &LookupError{Key: key}
}

func (b *batch) compile(ctx context.Context, tc *TypeContext) (Strategy, error) {
	key, err := b.factory.buildKey(tc)
	if err != nil {
		return nil, err
	}
	if s, ok := b.staged[key]; ok {
		return s, nil
	}

	h, err := selectHandler(b.factory.handlers, tc)
	if err != nil {
		return nil, err
	}
	s, err := h.Create(tc, b)
	if err != nil {
		return nil, err
	}
	if s.Type() != tc.Type {
		return nil, newConfigError(ErrStrategyMismatch, tc.Type, fmt.Sprintf("%s handler built %v", h.Name(), s.Type()))
	}
	if s.Requirement() == RequiresContext && key.Contextless() {
		return nil, newConfigError(ErrInternal, tc.Type, "contextual strategy from contextless key")
	}

	b.staged[key] = s
	b.order = append(b.order, key)

	emitStrategyCompiled(ctx, key, h.Name())
	b.factory.logger.Debug("compiled strategy",
		zap.String("key", key.String()),
		zap.String("handler", h.Name()),
		zap.Stringer("requirement", s.Requirement()),
	)
	return s, nil
}

// link binds every reference created during the batch.
func (b *batch) link() error {
	for _, ref := range b.refs {
		s, ok := b.staged[ref.key]
		if !ok {
			return &LookupError{Key: ref.key}
		}
		ref.target = s
	}
	return nil
}

// commit registers the staged strategies in compile order.
func (b *batch) commit() error {
	for _, key := range b.order {
		if b.factory.registry.Has(key) {
			return newConfigError(ErrDuplicate, key.Type, key.String())
		}
	}
	for _, key := range b.order {
		s := b.staged[key]
		var err error
		if s.Requirement() == Contextless {
			err = b.factory.registry.RegisterType(s)
		} else {
			err = b.factory.registry.RegisterContext(key.Flags, key.Specific, s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
