// Package mapper populates Go structs from decoded JSON trees, driven by the
// declared type of every member rather than by exact key correspondence.
package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noders-team/go-jsonmapper/pkg/codec"
	"github.com/noders-team/go-jsonmapper/pkg/typeexpr"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// Mapper maps decoded JSON onto structs. A Mapper caches member inspection
// results and may be shared between goroutines.
type Mapper struct {
	opts      Options
	logger    Logger
	registry  *Registry
	inspector *inspector
	factory   *factory
}

func New(opts ...Option) *Mapper {
	m := &Mapper{
		opts:     DefaultOptions(),
		logger:   nopLogger{},
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.inspector = newInspector(m.opts.IgnoreVisibility)
	m.factory = &factory{
		registry:  m.registry,
		overrides: m.opts.OverrideClassMap,
		factories: m.opts.OverrideFactories,
	}
	return m
}

// SetLogger replaces the logger. A nil logger disables logging.
func (m *Mapper) SetLogger(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}
	m.logger = logger
}

// Registry returns the type registry used to resolve declared type names.
func (m *Mapper) Registry() *Registry {
	return m.registry
}

// Map populates target, a non-nil pointer to a struct, from json and returns
// target. json is a decoded tree (see package codec) or raw JSON text given as
// a string or byte slice.
func (m *Mapper) Map(json any, target any) (any, error) {
	switch raw := json.(type) {
	case string:
		decoded, err := codec.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		json = decoded
	case []byte:
		decoded, err := codec.Decode(raw)
		if err != nil {
			return nil, err
		}
		json = decoded
	}

	switch kind := types.KindOf(json); {
	case kind == types.KindObject:
	case kind == types.KindArray && !m.opts.EnforceMapType:
	default:
		return nil, &ArgumentError{Message: fmt.Sprintf("mapper: Map requires an object as input, %s given", kind)}
	}

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, &ArgumentError{Message: fmt.Sprintf("mapper: Map requires a non-nil pointer to a struct as target, %T given", target)}
	}

	if err := m.mapObject(json, rv); err != nil {
		return nil, err
	}
	return target, nil
}

// MapJSON decodes data and maps it onto target.
func (m *Mapper) MapJSON(data []byte, target any) (any, error) {
	json, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return m.Map(json, target)
}

// MapInto allocates a T and maps json onto it.
func MapInto[T any](m *Mapper, json any) (*T, error) {
	target := new(T)
	if _, err := m.Map(json, target); err != nil {
		return nil, err
	}
	return target, nil
}

// mapObject populates the struct target points to.
func (m *Mapper) mapObject(json any, target reflect.Value) error {
	t := target.Elem().Type()
	class := TypeName(t)
	provided := make(map[string]struct{})

	for _, entry := range types.Entries(json) {
		key := entry.Key
		mem := m.inspector.inspect(t, key)

		if !mem.exists {
			if m.opts.ExceptionWhenUndefinedProperty {
				return newMappingError(CodeUndefinedProperty, key, class,
					"JSON property %q does not exist in object of type %s", key, class)
			}
			if m.opts.UndefinedPropertyHandler != nil {
				m.opts.UndefinedPropertyHandler(target.Interface(), key, entry.Value)
				continue
			}
			m.logger.Log(zerolog.InfoLevel, "Property {property} does not exist in {class}",
				map[string]any{"property": key, "class": class})
			continue
		}

		provided[strings.ToLower(key)] = struct{}{}
		provided[strings.ToLower(mem.name)] = struct{}{}

		if mem.accessor == accessorNone {
			if m.opts.ExceptionWhenUndefinedProperty {
				return newMappingError(CodeNoAccessibleSetter, key, class,
					"JSON property %q has no public setter method in object of type %s", key, class)
			}
			m.logger.Log(zerolog.InfoLevel, "Property {property} has no public setter method in {class}",
				map[string]any{"property": key, "class": class})
			continue
		}

		if err := m.mapMember(target, mem, key, entry.Value, class); err != nil {
			return err
		}
	}

	if m.opts.ExceptionWhenMissingData {
		for _, f := range m.inspector.requiredFields(t) {
			_, byName := provided[strings.ToLower(f.Name)]
			_, byTag := provided[strings.ToLower(jsonName(f))]
			if !byName && !byTag {
				return newMappingError(CodeMissingRequiredProperty, f.Name, class,
					"required property %q of class %s is missing in JSON data", f.Name, class)
			}
		}
	}
	return nil
}

// mapMember converts value according to the declared type of mem and stores it.
func (m *Mapper) mapMember(target reflect.Value, mem *member, key string, value any, class string) error {
	expr := typeexpr.Parse(mem.declared)
	if !mem.typed {
		expr.Kind = typeexpr.KindMixed
	}

	if value == nil {
		if expr.Nullable || !m.opts.ExceptionWhenNullType {
			return m.store(target, mem, key, nil, class)
		}
		return newMappingError(CodeNullNotAllowed, key, class,
			"JSON property %q in class %s must not be NULL", key, class)
	}

	pkg := target.Elem().Type().PkgPath()
	sc := m.inspector.scope(target.Elem().Type())

	switch expr.Kind {
	case typeexpr.KindMixed:
		return m.store(target, mem, key, value, class)
	case typeexpr.KindNamed:
		if info, ok := m.factory.lookup(typeexpr.Qualify(expr.Name, pkg), sc); ok && isInstance(value, info) {
			return m.store(target, mem, key, value, class)
		}
	case typeexpr.KindScalar:
		return m.store(target, mem, key, coerce(value, expr.Name), class)
	case typeexpr.KindEmpty:
		return newMappingError(CodeEmptyType, key, class,
			"empty type at property %q of class %s", key, class)
	case typeexpr.KindSequence, typeexpr.KindContainer:
		if !isCollection(value) {
			return newMappingError(CodeArrayTypeMismatch, key, class,
				"JSON property %q must be an array, %s given", key, types.KindOf(value))
		}
		container, err := m.newContainer(expr, mem.dst, value, pkg, sc)
		if err != nil {
			return withProperty(err, key)
		}
		filled, err := m.mapArray(value, container, elemType(expr.Elem, pkg), sc)
		if err != nil {
			return err
		}
		return m.store(target, mem, key, filled, class)
	}

	name := typeexpr.Qualify(expr.Name, pkg)
	if info, ok := m.factory.lookup(name, sc); ok && info.isContainer() {
		if !isCollection(value) {
			return newMappingError(CodeArrayTypeMismatch, key, class,
				"JSON property %q must be an array, %s given", key, types.KindOf(value))
		}
		container, err := m.factory.create(name, false, nil, sc)
		if err != nil {
			return withProperty(err, key)
		}
		filled, err := m.mapArray(value, container, "", sc)
		if err != nil {
			return err
		}
		return m.store(target, mem, key, filled, class)
	}

	kind := types.KindOf(value)
	if typeexpr.IsFlat(kind) && m.opts.StrictObjectTypeChecking {
		return newMappingError(CodeObjectTypeMismatch, key, class,
			"JSON property %q must be an object, %s given", key, kind)
	}
	if kind == types.KindOther {
		return newMappingError(CodeObjectTypeMismatch, key, class,
			"JSON property %q must be an object, %T given", key, value)
	}
	instance, err := m.build(name, value, sc)
	if err != nil {
		return withProperty(err, key)
	}
	return m.store(target, mem, key, instance, class)
}

// build creates an instance of the named type from value: flat values go
// through the single-argument constructor, objects through a fresh instance
// and recursion. name resolves against sc.
func (m *Mapper) build(name string, value any, sc scope) (any, error) {
	if typeexpr.IsFlat(types.KindOf(value)) {
		return m.factory.create(name, true, value, sc)
	}

	instance, err := m.factory.create(name, false, nil, sc)
	if err != nil {
		return nil, err
	}
	if _, ok := instance.(types.ArrayAccess); ok {
		return m.mapArray(value, instance, "", sc)
	}

	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, m.factory.fail(name, fmt.Errorf("%T is not a pointer to a struct", instance))
	}
	if err := m.mapObject(value, rv); err != nil {
		return nil, err
	}
	return instance, nil
}

// store writes value through the setter or field of mem.
func (m *Mapper) store(target reflect.Value, mem *member, key string, value any, class string) error {
	var err error
	switch mem.accessor {
	case accessorSetter:
		err = callSetter(target, mem, value)
	case accessorField:
		var field reflect.Value
		if field, err = fieldValue(target.Elem(), mem); err == nil {
			err = assign(field, value)
		}
	}
	if err != nil {
		return &MappingError{
			Code:     CodeAssignmentFailure,
			Property: key,
			Class:    class,
			Message:  fmt.Sprintf("cannot set property %q of class %s", key, class),
			Err:      err,
		}
	}
	return nil
}

func callSetter(target reflect.Value, mem *member, value any) error {
	method := target.MethodByName(mem.method)
	if !method.IsValid() {
		return fmt.Errorf("method %s not found", mem.method)
	}
	arg := reflect.New(mem.dst).Elem()
	if err := assign(arg, value); err != nil {
		return err
	}
	out := method.Call([]reflect.Value{arg})
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

// newContainer allocates the collection a Sequence or Container member is
// filled into. Native containers follow the Go type of the member.
func (m *Mapper) newContainer(expr typeexpr.Expr, dst reflect.Type, value any, pkg string, sc scope) (any, error) {
	if expr.Kind == typeexpr.KindContainer && !strings.EqualFold(expr.Name, typeexpr.ScalarArray) {
		name := typeexpr.Qualify(expr.Name, pkg)
		instance, err := m.factory.create(name, false, nil, sc)
		if err != nil {
			return nil, err
		}
		if _, ok := instance.(types.ArrayAccess); !ok {
			return nil, m.factory.fail(name, fmt.Errorf("%T does not implement types.ArrayAccess", instance))
		}
		return instance, nil
	}
	return nativeContainer(dst, value), nil
}

// nativeContainer returns a pointer to a fresh slice, or a fresh map, shaped
// after dst. Untyped destinations get []any for sequences and map[string]any
// for objects.
func nativeContainer(dst reflect.Type, value any) any {
	for dst != nil && dst.Kind() == reflect.Ptr {
		dst = dst.Elem()
	}
	if dst != nil {
		switch dst.Kind() {
		case reflect.Slice:
			return reflect.New(dst).Interface()
		case reflect.Array:
			return reflect.New(reflect.SliceOf(dst.Elem())).Interface()
		case reflect.Map:
			return reflect.MakeMap(dst).Interface()
		}
		if reflect.PointerTo(dst).Implements(arrayAccessType) {
			return reflect.New(dst).Interface()
		}
	}
	if types.KindOf(value) == types.KindObject {
		return map[string]any{}
	}
	return &[]any{}
}

// elemType normalizes the element type of a collection: null alternatives are
// dropped, mixed becomes untyped and names are qualified against pkg.
func elemType(elem, pkg string) string {
	elem = strings.TrimSpace(typeexpr.RemoveNullable(elem))
	if elem == "" || strings.EqualFold(elem, "mixed") {
		return ""
	}
	if inner, ok := typeexpr.ArrayElem(elem); ok {
		if inner = elemType(inner, pkg); inner == "" {
			return typeexpr.ScalarArray
		}
		return inner + "[]"
	}
	if typeexpr.IsSimple(elem) {
		return typeexpr.Parse(elem).Name
	}
	return typeexpr.Qualify(elem, pkg)
}

func isCollection(value any) bool {
	switch types.KindOf(value) {
	case types.KindArray, types.KindObject:
		return true
	}
	return false
}

// isInstance reports whether value already is of the registered type.
func isInstance(value any, info *TypeInfo) bool {
	vt := reflect.TypeOf(value)
	if vt == nil {
		return false
	}
	if info.Type.Kind() == reflect.Interface {
		return vt.Implements(info.Type)
	}
	return vt == info.Type || vt == reflect.PointerTo(info.Type)
}

// withProperty names the property on construction errors raised by the factory.
func withProperty(err error, property string) error {
	var me *MappingError
	if errors.As(err, &me) && me.Property == "" {
		me.Property = property
	}
	return err
}
