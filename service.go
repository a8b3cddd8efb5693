package wire

import (
	"context"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/zoobzio/sentinel"
	"go.uber.org/zap"
)

// Service owns a registry of compiled strategies and serializes registered
// top-level types with them.
//
// Services are safe for concurrent use. Registration takes the write lock;
// Serialize, Deserialize, Encode and Decode share the read lock.
type Service struct {
	mu       sync.RWMutex
	registry *Registry
	types    *TypeTable
	factory  *Factory
	logger   *zap.Logger
	roots    map[reflect.Type]struct{}
	compiled bool
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for compile-time diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTypes supplies a prepared TypeTable.
func WithTypes(types *TypeTable) Option {
	return func(s *Service) {
		if types != nil {
			s.types = types
		}
	}
}

// New returns an empty Service.
func New(opts ...Option) *Service {
	s := &Service{
		registry: NewRegistry(),
		types:    NewTypeTable(),
		logger:   zap.NewNop(),
		roots:    make(map[reflect.Type]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.factory = NewFactory(s.registry, s.types, s.logger)
	return s
}

// Types returns the type metadata consulted at compile time.
func (s *Service) Types() *TypeTable {
	return s.types
}

// Registry returns the strategy registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Register compiles t and every type it reaches. Registering the same
// top-level type twice fails with ErrDuplicate; a type already compiled as a
// dependency of another is adopted without recompiling.
func (s *Service) Register(t reflect.Type) error {
	return s.register(context.Background(), t)
}

// Register compiles T on s.
func Register[T any](s *Service) error {
	// Scanning caches metadata for T and the same-module structs it
	// references; struct plans are built from that cache. Non-struct roots
	// have nothing to scan.
	_, _ = sentinel.TryScan[T]()
	return s.register(context.Background(), reflect.TypeFor[T]())
}

func (s *Service) register(ctx context.Context, t reflect.Type) error {
	if t == nil {
		return newConfigError(ErrInternal, nil, "nil type")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.compiled {
		return newConfigError(ErrCompiled, t, "")
	}
	if _, ok := s.roots[t]; ok {
		return newConfigError(ErrDuplicate, t, "top-level type")
	}

	before := s.registry.Len()
	tc := NewTypeContext(t)
	key, err := s.factory.buildKey(tc)
	if err != nil {
		return err
	}
	if !s.registry.Has(key) {
		if _, err := s.factory.Create(ctx, tc); err != nil {
			s.logger.Debug("register failed", zap.Stringer("type", t), zap.Error(err))
			return err
		}
	}

	s.roots[t] = struct{}{}
	added := s.registry.Len() - before
	emitTypeRegistered(ctx, t.String(), added)
	s.logger.Debug("registered type",
		zap.Stringer("type", t),
		zap.Int("strategies", added),
	)
	return nil
}

// Compile freezes the service. Later registrations fail with ErrCompiled.
func (s *Service) Compile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compiled = true
}

// Compiled reports whether Compile has been called.
func (s *Service) Compiled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.compiled
}

// Serialize encodes v with the strategy registered for its type.
func (s *Service) Serialize(ctx context.Context, v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, newValueError(ErrUnsupportedValue, nil, "nil value")
	}
	return s.serialize(ctx, rv)
}

func (s *Service) serialize(ctx context.Context, rv reflect.Value) ([]byte, error) {
	typeName := rv.Type().String()
	emitSerializeStart(ctx, typeName)
	start := time.Now()

	w := NewBufferWriter()
	err := s.write(rv, w)
	var data []byte
	if err == nil {
		data = w.Bytes()
	}

	emitSerializeComplete(ctx, typeName, len(data), time.Since(start), err)
	return data, err
}

// Encode writes v to out with the strategy registered for its type.
func (s *Service) Encode(ctx context.Context, out io.Writer, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return newValueError(ErrUnsupportedValue, nil, "nil value")
	}

	typeName := rv.Type().String()
	emitSerializeStart(ctx, typeName)
	start := time.Now()

	w := NewStreamWriter(out)
	err := s.write(rv, w)

	emitSerializeComplete(ctx, typeName, w.Written(), time.Since(start), err)
	return err
}

func (s *Service) write(rv reflect.Value, w Writer) error {
	strategy, err := s.strategyFor(rv.Type())
	if err != nil {
		return err
	}
	return strategy.Write(rv, w)
}

// Deserialize decodes data into out, which must be a non-nil pointer to a
// registered type.
func (s *Service) Deserialize(ctx context.Context, data []byte, out any) error {
	target, err := outTarget(out)
	if err != nil {
		return err
	}

	typeName := target.Type().String()
	emitDeserializeStart(ctx, typeName, len(data))
	start := time.Now()

	err = s.read(NewBufferReader(data), target)

	emitDeserializeComplete(ctx, typeName, time.Since(start), err)
	return err
}

// Decode reads one value from in into out, which must be a non-nil pointer
// to a registered type.
func (s *Service) Decode(ctx context.Context, in io.Reader, out any) error {
	target, err := outTarget(out)
	if err != nil {
		return err
	}

	typeName := target.Type().String()
	emitDeserializeStart(ctx, typeName, 0)
	start := time.Now()

	err = s.read(NewStreamReader(in), target)

	emitDeserializeComplete(ctx, typeName, time.Since(start), err)
	return err
}

func (s *Service) read(r Reader, target reflect.Value) error {
	strategy, err := s.strategyFor(target.Type())
	if err != nil {
		return err
	}
	v, err := strategy.Read(r)
	if err != nil {
		return err
	}
	target.Set(v)
	return nil
}

func (s *Service) strategyFor(t reflect.Type) (Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry.Get(ContextKey{Type: t})
}

func outTarget(out any) (reflect.Value, error) {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, newValueError(ErrUnsupportedValue, reflect.TypeOf(out), "decode target must be a non-nil pointer")
	}
	return rv.Elem(), nil
}

// Marshal encodes v with the strategy registered for T. Interface types
// dispatch through their subtype table.
func Marshal[T any](ctx context.Context, s *Service, v T) ([]byte, error) {
	return s.serialize(ctx, reflect.ValueOf(&v).Elem())
}

// Unmarshal decodes data as a T.
func Unmarshal[T any](ctx context.Context, s *Service, data []byte) (T, error) {
	var out T
	err := s.Deserialize(ctx, data, &out)
	return out, err
}
