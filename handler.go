package wire

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the member context tag with sentinel
	sentinel.Tag(TagName)
}

// Resolver hands a handler the compiled strategy of one of its subcontexts.
type Resolver interface {
	Resolve(ctx *TypeContext) (Strategy, error)
}

// Handler resolves one kind of type context into a strategy.
type Handler interface {
	// Name identifies the handler in errors and logs.
	Name() string

	// CanHandle is a pure predicate on the context type and flags.
	CanHandle(ctx *TypeContext) bool

	// Subcontexts lists the dependencies that must be compiled first.
	Subcontexts(ctx *TypeContext) ([]*TypeContext, error)

	// Create builds the strategy, assuming every subcontext is resolvable.
	Create(ctx *TypeContext, deps Resolver) (Strategy, error)
}

// defaultHandlers returns the closed handler set in precedence order.
func defaultHandlers(types *TypeTable) []Handler {
	return []Handler{
		&customHandler{types: types},
		&primitiveHandler{types: types},
		&stringHandler{types: types},
		&enumHandler{types: types},
		&arrayHandler{types: types},
		&subtypeHandler{types: types},
		&pointerHandler{},
		&complexHandler{types: types},
	}
}

// selectHandler returns the single handler accepting ctx.
func selectHandler(handlers []Handler, ctx *TypeContext) (Handler, error) {
	var matched []Handler
	for _, h := range handlers {
		if h.CanHandle(ctx) {
			matched = append(matched, h)
		}
	}

	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		return nil, newConfigError(ErrNoHandler, ctx.Type, ctx.String())
	default:
		names := make([]string, len(matched))
		for i, h := range matched {
			names[i] = h.Name()
		}
		return nil, newConfigError(ErrAmbiguousHandler, ctx.Type, strings.Join(names, ","))
	}
}

// customHandler instantiates strategies declared by the type itself or by a
// TypeTable override.
type customHandler struct {
	types *TypeTable
}

func (h *customHandler) Name() string { return "custom" }

func (h *customHandler) CanHandle(ctx *TypeContext) bool {
	return h.types.isCustom(ctx.Type)
}

func (h *customHandler) Subcontexts(*TypeContext) ([]*TypeContext, error) {
	return nil, nil
}

func (h *customHandler) Create(ctx *TypeContext, _ Resolver) (Strategy, error) {
	s, ok := h.types.override(ctx.Type)
	if !ok {
		s, ok = providedStrategy(ctx.Type)
	}
	if !ok || s == nil || s.Type() != ctx.Type {
		return nil, newConfigError(ErrStrategyMismatch, ctx.Type, fmt.Sprintf("declared strategy serves %v", strategyType(s)))
	}
	return &customStrategy{Strategy: s}, nil
}

// primitiveHandler covers bool, builtin integers and floats.
type primitiveHandler struct {
	types *TypeTable
}

func (h *primitiveHandler) Name() string { return "primitive" }

func (h *primitiveHandler) CanHandle(ctx *TypeContext) bool {
	return isPrimitiveType(ctx.Type) && !h.types.isCustom(ctx.Type)
}

func (h *primitiveHandler) Subcontexts(*TypeContext) ([]*TypeContext, error) {
	return nil, nil
}

func (h *primitiveHandler) Create(ctx *TypeContext, _ Resolver) (Strategy, error) {
	return newPrimitiveStrategy(ctx.Type, ctx.Flags().Has(FlagReverse), ctx.Requirement()), nil
}

// stringHandler composes the string decorator chain.
type stringHandler struct {
	types *TypeTable
}

func (h *stringHandler) Name() string { return "string" }

func (h *stringHandler) CanHandle(ctx *TypeContext) bool {
	return ctx.Type.Kind() == reflect.String && !h.types.isCustom(ctx.Type)
}

func (h *stringHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	if ctx.Flags().Has(FlagSendSize) {
		return []*TypeContext{NewTypeContext(sizeFieldType(ctx.Specific().Width()))}, nil
	}
	return nil, nil
}

func (h *stringHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	flags := ctx.Flags()
	cs, err := charsetFor(ctx.Type, flags)
	if err != nil {
		return nil, err
	}

	terminate := !flags.Has(FlagDontTerminate)
	var layer stringLayer
	switch {
	case flags.Has(FlagFixedSize):
		layer = &fixedLayer{typ: ctx.Type, cs: cs, size: int(ctx.Specific())}
	case flags.Has(FlagSendSize):
		size, err := resolveSize(deps, ctx.Specific().Width())
		if err != nil {
			return nil, err
		}
		layer = &prefixedLayer{typ: ctx.Type, cs: cs, size: size, adjust: ctx.Specific().Adjust(), terminate: terminate}
	case terminate:
		layer = &terminatedLayer{typ: ctx.Type, cs: cs}
	default:
		layer = &unterminatedLayer{typ: ctx.Type, cs: cs}
	}

	if flags.Has(FlagReverse) {
		layer = &reverseLayer{inner: layer}
	}
	return &stringStrategy{typ: ctx.Type, req: ctx.Requirement(), layer: layer}, nil
}

// enumHandler wraps the underlying integer, or a string strategy for
// enumstring members.
type enumHandler struct {
	types *TypeTable
}

func (h *enumHandler) Name() string { return "enum" }

func (h *enumHandler) CanHandle(ctx *TypeContext) bool {
	return isEnumType(ctx.Type) && !h.types.isCustom(ctx.Type)
}

// innerContext is the context of the integer or string an enum is written
// as.
func (h *enumHandler) innerContext(ctx *TypeContext) *TypeContext {
	if ctx.Flags().Has(FlagEnumString) {
		return NewMemberContext(reflect.TypeFor[string](), Member{
			Name:     ctx.Member.Name,
			Flags:    ctx.Flags() &^ FlagEnumString,
			Specific: ctx.Specific(),
		})
	}
	return NewMemberContext(underlyingInteger(ctx.Type), Member{
		Name:  ctx.Member.Name,
		Flags: ctx.Flags() & FlagReverse,
	})
}

func (h *enumHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	return []*TypeContext{h.innerContext(ctx)}, nil
}

func (h *enumHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	if !ctx.Flags().Has(FlagEnumString) {
		inner, err := deps.Resolve(h.innerContext(ctx))
		if err != nil {
			return nil, err
		}
		return &enumStrategy{typ: ctx.Type, req: ctx.Requirement(), inner: inner}, nil
	}

	names, ok := h.types.enum(ctx.Type)
	if !ok {
		return nil, newConfigError(ErrConflictingFlags, ctx.Type, "enumstring without declared names")
	}
	inner, err := deps.Resolve(h.innerContext(ctx))
	if err != nil {
		return nil, err
	}
	return &enumStringStrategy{typ: ctx.Type, req: ctx.Requirement(), names: names, inner: inner}, nil
}

// arrayHandler covers slices and Go arrays.
type arrayHandler struct {
	types *TypeTable
}

func (h *arrayHandler) Name() string { return "array" }

func (h *arrayHandler) CanHandle(ctx *TypeContext) bool {
	k := ctx.Type.Kind()
	return (k == reflect.Slice || k == reflect.Array) && !h.types.isCustom(ctx.Type)
}

func (h *arrayHandler) elemContext(ctx *TypeContext) *TypeContext {
	return NewMemberContext(ctx.Type.Elem(), Member{
		Name:  ctx.Member.Name + "[]",
		Flags: elementFlags(ctx.Flags()),
	})
}

// prefixed reports whether the array writes a size field, and its width.
func (h *arrayHandler) prefixed(ctx *TypeContext) (bool, SizeType) {
	switch {
	case ctx.Type.Kind() == reflect.Array, ctx.Flags().Has(FlagFixedSize):
		return false, 0
	case ctx.Flags().Has(FlagSendSize):
		return true, ctx.Specific().Width()
	default:
		return true, SizeInt32
	}
}

func (h *arrayHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	subs := []*TypeContext{h.elemContext(ctx)}
	if ok, width := h.prefixed(ctx); ok {
		subs = append(subs, NewTypeContext(sizeFieldType(width)))
	}
	return subs, nil
}

func (h *arrayHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	elem, err := deps.Resolve(h.elemContext(ctx))
	if err != nil {
		return nil, err
	}

	s := &arrayStrategy{typ: ctx.Type, req: ctx.Requirement(), elem: elem}
	switch {
	case ctx.Type.Kind() == reflect.Array:
		s.count = ctx.Type.Len()
	case ctx.Flags().Has(FlagFixedSize):
		s.count = int(ctx.Specific())
	default:
		_, width := h.prefixed(ctx)
		size, err := resolveSize(deps, width)
		if err != nil {
			return nil, err
		}
		s.size = size
		if ctx.Flags().Has(FlagSendSize) {
			s.adjust = ctx.Specific().Adjust()
		}
	}
	return s, nil
}

// subtypeHandler covers interfaces with a declared subtype table.
type subtypeHandler struct {
	types *TypeTable
}

func (h *subtypeHandler) Name() string { return "subtype" }

func (h *subtypeHandler) CanHandle(ctx *TypeContext) bool {
	if ctx.Type.Kind() != reflect.Interface {
		return false
	}
	_, ok := h.types.subtypeTable(ctx.Type)
	return ok
}

func (h *subtypeHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	table, _ := h.types.subtypeTable(ctx.Type)
	subs := make([]*TypeContext, 0, len(table.children)+1)
	for _, child := range table.children {
		subs = append(subs, NewTypeContext(child.Type))
	}
	subs = append(subs, NewTypeContext(sizeFieldType(table.width)))
	return subs, nil
}

func (h *subtypeHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	table, _ := h.types.subtypeTable(ctx.Type)
	disc, err := resolveSize(deps, table.width)
	if err != nil {
		return nil, err
	}

	children := make(map[reflect.Type]Strategy, len(table.children))
	for _, child := range table.children {
		s, err := deps.Resolve(NewTypeContext(child.Type))
		if err != nil {
			return nil, err
		}
		children[child.Type] = s
	}
	return &subtypeStrategy{typ: ctx.Type, table: table, disc: disc, children: children}, nil
}

// pointerHandler passes member context through to the element.
type pointerHandler struct{}

func (h *pointerHandler) Name() string { return "pointer" }

func (h *pointerHandler) CanHandle(ctx *TypeContext) bool {
	return ctx.Type.Kind() == reflect.Pointer
}

func (h *pointerHandler) elemContext(ctx *TypeContext) *TypeContext {
	return ctx.Retype(ctx.Type.Elem())
}

func (h *pointerHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	return []*TypeContext{h.elemContext(ctx)}, nil
}

func (h *pointerHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	elem, err := deps.Resolve(h.elemContext(ctx))
	if err != nil {
		return nil, err
	}
	return &pointerStrategy{typ: ctx.Type, req: ctx.Requirement(), elem: elem}, nil
}

// complexHandler covers structs, one subcontext per exported field.
type complexHandler struct {
	types *TypeTable
}

func (h *complexHandler) Name() string { return "complex" }

func (h *complexHandler) CanHandle(ctx *TypeContext) bool {
	return ctx.Type.Kind() == reflect.Struct && !h.types.isCustom(ctx.Type)
}

type memberPlan struct {
	name  string
	index []int
	ctx   *TypeContext
}

func (h *complexHandler) plan(t reflect.Type) ([]memberPlan, error) {
	meta, _ := scanStructType(t)
	plans := make([]memberPlan, 0, len(meta.Fields))
	for _, field := range meta.Fields {
		if !t.FieldByIndex(field.Index).IsExported() {
			continue
		}
		tag := field.Tags[TagName]
		if tag == "-" {
			continue
		}
		m, err := ParseTag(field.Name, tag)
		if err != nil {
			return nil, newConfigError(ErrInvalidTag, t, err.Error())
		}
		plans = append(plans, memberPlan{
			name:  field.Name,
			index: field.Index,
			ctx:   NewMemberContext(field.ReflectType, m),
		})
	}
	return plans, nil
}

func (h *complexHandler) Subcontexts(ctx *TypeContext) ([]*TypeContext, error) {
	plans, err := h.plan(ctx.Type)
	if err != nil {
		return nil, err
	}
	subs := make([]*TypeContext, len(plans))
	for i, p := range plans {
		subs[i] = p.ctx
	}
	return subs, nil
}

func (h *complexHandler) Create(ctx *TypeContext, deps Resolver) (Strategy, error) {
	plans, err := h.plan(ctx.Type)
	if err != nil {
		return nil, err
	}
	members := make([]complexMember, len(plans))
	for i, p := range plans {
		s, err := deps.Resolve(p.ctx)
		if err != nil {
			return nil, err
		}
		members[i] = complexMember{name: p.name, index: p.index, strategy: s}
	}
	return &complexStrategy{typ: ctx.Type, members: members}, nil
}

// scanStructType returns the field metadata of a struct type and whether it
// came from sentinel's cache. Types sentinel has not scanned are built from
// reflection in the same shape.
func scanStructType(rt reflect.Type) (sentinel.Metadata, bool) {
	if rt.Name() != "" {
		if meta, ok := sentinel.Lookup(rt.Name()); ok && describes(meta, rt) {
			return meta, true
		}
	}

	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val := sf.Tag.Get(TagName); val != "" {
			fm.Tags[TagName] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}
	return meta, false
}

// describes reports whether cached metadata matches rt field for field.
// Sentinel keys its cache by bare type name, so types of the same name in
// other packages or scopes must not be mistaken for rt.
func describes(meta sentinel.Metadata, rt reflect.Type) bool {
	if meta.PackageName != rt.PkgPath() {
		return false
	}
	exported := 0
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).IsExported() {
			exported++
		}
	}
	if len(meta.Fields) != exported {
		return false
	}
	for _, field := range meta.Fields {
		if len(field.Index) != 1 || field.Index[0] >= rt.NumField() {
			return false
		}
		sf := rt.Field(field.Index[0])
		if sf.Type != field.ReflectType || sf.Tag.Get(TagName) != field.Tags[TagName] {
			return false
		}
	}
	return true
}

// resolveSize resolves the integer strategy backing a size field.
func resolveSize(deps Resolver, width SizeType) (*sizeStrategy, error) {
	inner, err := deps.Resolve(NewTypeContext(sizeFieldType(width)))
	if err != nil {
		return nil, err
	}
	return &sizeStrategy{width: width, inner: inner}, nil
}
