package wire

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Subtype maps one discriminator to a concrete child type.
type Subtype struct {
	Discriminator int64
	Type          reflect.Type
}

// subtypeTable is the ordered subtype mapping of one base interface.
type subtypeTable struct {
	width    SizeType
	children []Subtype
	byType   map[reflect.Type]int64
	byDisc   map[int64]reflect.Type
}

// enumTable maps enum names to values and back.
type enumTable struct {
	byName  map[string]int64
	byValue map[int64]string
}

// TypeTable holds host type metadata consumed at compile time: enum name
// tables, subtype mappings and explicit strategy overrides.
//
// TypeTable is safe for concurrent use.
type TypeTable struct {
	mu        sync.RWMutex
	enums     map[reflect.Type]*enumTable
	subtypes  map[reflect.Type]*subtypeTable
	overrides map[reflect.Type]Strategy
}

// NewTypeTable returns an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{
		enums:     make(map[reflect.Type]*enumTable),
		subtypes:  make(map[reflect.Type]*subtypeTable),
		overrides: make(map[reflect.Type]Strategy),
	}
}

// Enum declares the names of a named integer type. Names are required for
// members tagged enumstring.
func (tt *TypeTable) Enum(t reflect.Type, names map[string]int64) error {
	if !isEnumType(t) {
		return newConfigError(ErrConflictingFlags, t, "enum names on a non-enum type")
	}

	table := &enumTable{
		byName:  make(map[string]int64, len(names)),
		byValue: make(map[int64]string, len(names)),
	}
	for name, v := range names {
		if other, ok := table.byValue[v]; ok {
			return newConfigError(ErrDuplicate, t, fmt.Sprintf("enum value %d named %q and %q", v, other, name))
		}
		table.byName[name] = v
		table.byValue[v] = name
	}

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, ok := tt.enums[t]; ok {
		return newConfigError(ErrDuplicate, t, "enum names")
	}
	tt.enums[t] = table
	return nil
}

// DeclareEnum declares enum names from a typed value table.
func DeclareEnum[E integer](tt *TypeTable, names map[E]string) error {
	byName := make(map[string]int64, len(names))
	for v, name := range names {
		if _, ok := byName[name]; ok {
			return newConfigError(ErrDuplicate, reflect.TypeFor[E](), fmt.Sprintf("enum name %q", name))
		}
		byName[name] = int64(v)
	}
	return tt.Enum(reflect.TypeFor[E](), byName)
}

// Subtypes declares the ordered children of a base interface and the width of
// their discriminator.
func (tt *TypeTable) Subtypes(base reflect.Type, width SizeType, children ...Subtype) error {
	if base == nil || base.Kind() != reflect.Interface {
		return newConfigError(ErrConflictingFlags, base, "subtype base must be an interface")
	}
	if !IsValidSizeType(width) {
		return newConfigError(ErrConflictingFlags, base, fmt.Sprintf("discriminator width %s", width))
	}

	table := &subtypeTable{
		width:    width,
		children: make([]Subtype, 0, len(children)),
		byType:   make(map[reflect.Type]int64, len(children)),
		byDisc:   make(map[int64]reflect.Type, len(children)),
	}
	for _, child := range children {
		switch {
		case child.Type == nil || child.Type.Kind() == reflect.Interface:
			return newConfigError(ErrConflictingFlags, base, fmt.Sprintf("subtype %d must be concrete", child.Discriminator))
		case !child.Type.Implements(base):
			return newConfigError(ErrConflictingFlags, base, fmt.Sprintf("subtype %s does not implement base", child.Type))
		case !fitsWidth(child.Discriminator, width):
			return newConfigError(ErrConflictingFlags, base, fmt.Sprintf("discriminator %d exceeds %s", child.Discriminator, width))
		}
		if other, ok := table.byDisc[child.Discriminator]; ok {
			return newConfigError(ErrDuplicateDiscriminator, base,
				fmt.Sprintf("discriminator %d used by %s and %s", child.Discriminator, other, child.Type))
		}
		if _, ok := table.byType[child.Type]; ok {
			return newConfigError(ErrDuplicate, base, fmt.Sprintf("subtype %s listed twice", child.Type))
		}
		table.children = append(table.children, child)
		table.byType[child.Type] = child.Discriminator
		table.byDisc[child.Discriminator] = child.Type
	}

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, ok := tt.subtypes[base]; ok {
		return newConfigError(ErrDuplicate, base, "subtype table")
	}
	tt.subtypes[base] = table
	return nil
}

// Override declares an explicit strategy for t, bypassing the handlers.
func (tt *TypeTable) Override(t reflect.Type, s Strategy) error {
	if s == nil || s.Type() != t {
		return newConfigError(ErrStrategyMismatch, t, fmt.Sprintf("override serves %v", strategyType(s)))
	}

	tt.mu.Lock()
	defer tt.mu.Unlock()
	if _, ok := tt.overrides[t]; ok {
		return newConfigError(ErrDuplicate, t, "override")
	}
	tt.overrides[t] = s
	return nil
}

func (tt *TypeTable) enum(t reflect.Type) (*enumTable, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	e, ok := tt.enums[t]
	return e, ok
}

func (tt *TypeTable) subtypeTable(base reflect.Type) (*subtypeTable, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	s, ok := tt.subtypes[base]
	return s, ok
}

func (tt *TypeTable) override(t reflect.Type) (Strategy, bool) {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	s, ok := tt.overrides[t]
	return s, ok
}

// isCustom reports whether t is compiled from an explicit strategy.
func (tt *TypeTable) isCustom(t reflect.Type) bool {
	if _, ok := tt.override(t); ok {
		return true
	}
	return declaresStrategy(t)
}

// names returns the enum names sorted by value.
func (e *enumTable) names() []string {
	values := make([]int64, 0, len(e.byValue))
	for v := range e.byValue {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = e.byValue[v]
	}
	return out
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isUnsignedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// isEnumType reports whether t is a named integer type.
func isEnumType(t reflect.Type) bool {
	return isIntegerKind(t.Kind()) && t.PkgPath() != ""
}

// isPrimitiveType reports whether t is a builtin integer, or any bool or
// float type.
func isPrimitiveType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Float32, reflect.Float64:
		return true
	}
	return isIntegerKind(t.Kind()) && t.PkgPath() == ""
}

// underlyingInteger returns the builtin integer type of an enum's kind.
func underlyingInteger(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Int:
		return reflect.TypeFor[int]()
	case reflect.Int8:
		return reflect.TypeFor[int8]()
	case reflect.Int16:
		return reflect.TypeFor[int16]()
	case reflect.Int32:
		return reflect.TypeFor[int32]()
	case reflect.Int64:
		return reflect.TypeFor[int64]()
	case reflect.Uint:
		return reflect.TypeFor[uint]()
	case reflect.Uint8:
		return reflect.TypeFor[uint8]()
	case reflect.Uint16:
		return reflect.TypeFor[uint16]()
	case reflect.Uint32:
		return reflect.TypeFor[uint32]()
	case reflect.Uint64:
		return reflect.TypeFor[uint64]()
	}
	return nil
}

func fitsWidth(v int64, width SizeType) bool {
	switch width {
	case SizeByte:
		return v >= 0 && v <= 0xFF
	case SizeUShort:
		return v >= 0 && v <= 0xFFFF
	case SizeInt32:
		return v >= -1<<31 && v <= 1<<31-1
	}
	return false
}

func strategyType(s Strategy) reflect.Type {
	if s == nil {
		return nil
	}
	return s.Type()
}
