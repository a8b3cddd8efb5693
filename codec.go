package wire

import (
	"context"
	"reflect"
)

// ContentType is the MIME type of wire-encoded payloads.
const ContentType = "application/x-wire"

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/x-wire").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// serviceCodec adapts a Service to Codec.
type serviceCodec struct {
	svc *Service
}

// Codec returns the service as a Codec for code that expects byte-oriented
// marshaling.
func (s *Service) Codec() Codec {
	return &serviceCodec{svc: s}
}

func (c *serviceCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v. A pointer to a registered type is dereferenced, so
// Marshal(&x) pairs with Unmarshal(data, &x).
func (c *serviceCodec) Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Pointer && !rv.IsNil() {
		if c.svc.registry.Has(ContextKey{Type: rv.Type().Elem()}) {
			rv = rv.Elem()
		}
	}
	if !rv.IsValid() {
		return nil, newValueError(ErrUnsupportedValue, nil, "nil value")
	}
	return c.svc.serialize(context.Background(), rv)
}

func (c *serviceCodec) Unmarshal(data []byte, v any) error {
	return c.svc.Deserialize(context.Background(), data, v)
}
