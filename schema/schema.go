// Package schema loads wire type metadata from YAML documents.
//
// A document declares enum name tables, subtype tables and the top-level
// types to register, all by type name:
//
//	enums:
//	  - type: game.Realm
//	    names: {EU: 1, US: 2}
//	subtypes:
//	  - base: game.Payload
//	    width: byte
//	    children:
//	      - {discriminator: 1, type: game.Chat}
//	      - {discriminator: 2, type: game.Move}
//	roots:
//	  - game.Login
//
// Type names resolve through a caller-supplied Types map, since Go offers no
// lookup of types by name at run time.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/wire"
)

// ErrInvalid indicates a document that fails validation.
var ErrInvalid = errors.New("invalid schema")

// Types resolves type names used in a document.
type Types map[string]reflect.Type

// Add registers t under its qualified name, as rendered by reflect.
func (ts Types) Add(t reflect.Type) Types {
	ts[t.String()] = t
	return ts
}

// Document is a parsed schema.
type Document struct {
	Enums    []Enum    `yaml:"enums"`
	Subtypes []Subtype `yaml:"subtypes"`
	Roots    []string  `yaml:"roots"`
}

// Enum declares the names of an enum type.
type Enum struct {
	Type  string           `yaml:"type"`
	Names map[string]int64 `yaml:"names"`
}

// Subtype declares the subtype table of an interface.
type Subtype struct {
	Base     string  `yaml:"base"`
	Width    string  `yaml:"width"`
	Children []Child `yaml:"children"`
}

// Child maps one discriminator to a concrete type.
type Child struct {
	Discriminator int64  `yaml:"discriminator"`
	Type          string `yaml:"type"`
}

// Parse decodes a YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	return Load(bytes.NewReader(data))
}

// Load decodes a YAML document from r.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &doc, nil
}

// Validate checks every name and width in the document, reporting all
// problems at once.
func (d *Document) Validate(types Types) error {
	var err error
	for i, e := range d.Enums {
		if _, ok := types[e.Type]; !ok {
			err = multierr.Append(err, invalidf("enums[%d]: unknown type %q", i, e.Type))
		}
		if len(e.Names) == 0 {
			err = multierr.Append(err, invalidf("enums[%d]: no names", i))
		}
	}

	for i, s := range d.Subtypes {
		if _, ok := types[s.Base]; !ok {
			err = multierr.Append(err, invalidf("subtypes[%d]: unknown base %q", i, s.Base))
		}
		if s.Width != "" {
			if _, ok := wire.ParseSizeType(s.Width); !ok {
				err = multierr.Append(err, invalidf("subtypes[%d]: invalid width %q", i, s.Width))
			}
		}
		if len(s.Children) == 0 {
			err = multierr.Append(err, invalidf("subtypes[%d]: no children", i))
		}
		for j, c := range s.Children {
			if _, ok := types[c.Type]; !ok {
				err = multierr.Append(err, invalidf("subtypes[%d].children[%d]: unknown type %q", i, j, c.Type))
			}
		}
	}

	for i, name := range d.Roots {
		if _, ok := types[name]; !ok {
			err = multierr.Append(err, invalidf("roots[%d]: unknown type %q", i, name))
		}
	}
	return err
}

// Apply validates the document, declares its enums and subtype tables on the
// service's TypeTable and registers its roots in order.
func (d *Document) Apply(svc *wire.Service, types Types) error {
	if err := d.Validate(types); err != nil {
		return err
	}

	var err error
	tt := svc.Types()
	for _, e := range d.Enums {
		err = multierr.Append(err, tt.Enum(types[e.Type], e.Names))
	}
	for _, s := range d.Subtypes {
		width := wire.SizeByte
		if s.Width != "" {
			width, _ = wire.ParseSizeType(s.Width)
		}
		children := make([]wire.Subtype, len(s.Children))
		for i, c := range s.Children {
			children[i] = wire.Subtype{Discriminator: c.Discriminator, Type: types[c.Type]}
		}
		err = multierr.Append(err, tt.Subtypes(types[s.Base], width, children...))
	}
	if err != nil {
		return err
	}

	for _, name := range d.Roots {
		if err := svc.Register(types[name]); err != nil {
			return fmt.Errorf("schema: root %s: %w", name, err)
		}
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
