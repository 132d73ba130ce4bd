package mapper

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-jsonmapper/pkg/typeexpr"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// FlatConstructor builds an instance from a single flat value.
type FlatConstructor func(arg any) (any, error)

// TypeInfo describes a constructible type known to a Registry.
type TypeInfo struct {
	Name     string
	Type     reflect.Type
	New      Factory
	FromFlat FlatConstructor
}

type TypeOption func(*TypeInfo)

// WithFactory overrides zero-argument construction.
func WithFactory(factory Factory) TypeOption {
	return func(info *TypeInfo) {
		info.New = factory
	}
}

// WithFlatConstructor sets the single-argument constructor used when a flat
// value is given for a member of this type.
func WithFlatConstructor(fn FlatConstructor) TypeOption {
	return func(info *TypeInfo) {
		info.FromFlat = fn
	}
}

// Registry resolves qualified type names to Go types. Types a declaring
// struct reaches through its own members, or lists through TypeCatalog, resolve
// without registration; interfaces used with an override map and types named
// only in annotations of other packages must be registered up front.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*TypeInfo
}

func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*TypeInfo)}
	Register[time.Time](r, WithFlatConstructor(timeFromFlat))
	Register[decimal.Decimal](r, WithFlatConstructor(decimalFromFlat))
	Register[types.ArrayObject](r, WithFactory(func() any { return types.NewArrayObject() }))
	return r
}

// TypeName returns the qualified name of t, "<import path>.<Name>". Pointer
// types are named after their element.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Register records T and returns its qualified name. T may be an interface.
func Register[T any](r *Registry, opts ...TypeOption) string {
	return r.RegisterType(reflect.TypeOf((*T)(nil)).Elem(), opts...)
}

func (r *Registry) RegisterType(t reflect.Type, opts ...TypeOption) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	info := &TypeInfo{Name: TypeName(t), Type: t}
	for _, opt := range opts {
		opt(info)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[info.Name] = info
	return info.Name
}

func (r *Registry) Lookup(name string) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byName[typeexpr.Qualify(name, "")]
	return info, ok
}

var arrayAccessType = reflect.TypeOf((*types.ArrayAccess)(nil)).Elem()

// isContainer reports whether the type is filled as a keyed collection.
func (info *TypeInfo) isContainer() bool {
	if info.Type.Kind() == reflect.Interface {
		return info.Type.Implements(arrayAccessType)
	}
	return reflect.PointerTo(info.Type).Implements(arrayAccessType)
}

func (info *TypeInfo) newInstance() (any, error) {
	if info.New != nil {
		v := info.New()
		if v == nil {
			return nil, fmt.Errorf("factory of %s returned nil", info.Name)
		}
		return v, nil
	}
	if info.Type.Kind() == reflect.Interface {
		return nil, fmt.Errorf("cannot instantiate interface %s without an override", info.Name)
	}
	return reflect.New(info.Type).Interface(), nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func (info *TypeInfo) newFromFlat(arg any) (any, error) {
	if info.FromFlat != nil {
		return info.FromFlat(arg)
	}
	if reflect.PointerTo(info.Type).Implements(textUnmarshalerType) {
		p := reflect.New(info.Type)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(toString(arg))); err != nil {
			return nil, err
		}
		return p.Interface(), nil
	}
	switch info.Type.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		p := reflect.New(info.Type)
		if err := assign(p.Elem(), arg); err != nil {
			return nil, err
		}
		return p.Elem().Interface(), nil
	}
	return nil, fmt.Errorf("%s has no single-argument constructor", info.Name)
}

func timeFromFlat(arg any) (any, error) {
	switch types.KindOf(arg) {
	case types.KindNumber:
		return time.Unix(toInt(arg), 0).UTC(), nil
	case types.KindString:
		t, err := time.Parse(time.RFC3339Nano, arg.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp format: %w", err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("expected string or number for time, got %T", arg)
}

func decimalFromFlat(arg any) (any, error) {
	switch types.KindOf(arg) {
	case types.KindNumber:
		return toDecimal(arg), nil
	case types.KindString:
		d, err := decimal.NewFromString(arg.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal format: %w", err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("expected string or number for decimal, got %T", arg)
}

// scope holds the named types a declaring type refers to by name, keyed by
// qualified name.
type scope map[string]reflect.Type

func (s scope) add(t reflect.Type) {
	for {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
			continue
		}
		break
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return
	}
	s[TypeName(t)] = t
}

// factory creates instances for a mapper, applying its override maps.
type factory struct {
	registry  *Registry
	overrides map[string]string
	factories map[string]Factory
}

// lookup resolves a qualified name through the registry first and the scope
// of the declaring type second.
func (f *factory) lookup(name string, sc scope) (*TypeInfo, bool) {
	if info, ok := f.registry.Lookup(name); ok {
		return info, true
	}
	if t, ok := sc[typeexpr.Qualify(name, "")]; ok {
		return &TypeInfo{Name: TypeName(t), Type: t}, true
	}
	return nil, false
}

// override returns the substitute for name, checking the qualified name first
// and its short form second.
func (f *factory) override(name string) (string, Factory) {
	for _, key := range []string{name, typeexpr.ShortName(name)} {
		if fn, ok := f.factories[key]; ok {
			return name, fn
		}
		if substitute, ok := f.overrides[key]; ok {
			pkg := ""
			if i := strings.LastIndex(name, "."); i >= 0 {
				pkg = name[:i]
			}
			return typeexpr.Qualify(substitute, pkg), nil
		}
	}
	return name, nil
}

// create builds an instance of the named type. With useArg the single-argument
// path is taken with arg, otherwise the zero-argument one. Every failure is a
// ConstructionFailure. Names resolve against sc, the scope of the declaring type.
func (f *factory) create(name string, useArg bool, arg any, sc scope) (any, error) {
	resolved, fn := f.override(name)

	var (
		info *TypeInfo
		ok   bool
	)
	if fn != nil {
		instance := fn()
		if instance == nil {
			return nil, f.fail(name, fmt.Errorf("override factory returned nil"))
		}
		if !useArg {
			return instance, nil
		}
		info, ok = f.registry.Lookup(TypeName(reflect.TypeOf(instance)))
		if !ok {
			t := reflect.Indirect(reflect.ValueOf(instance)).Type()
			info, ok = &TypeInfo{Name: TypeName(t), Type: t}, true
		}
	} else {
		info, ok = f.lookup(resolved, sc)
	}
	if !ok {
		return nil, f.fail(resolved, fmt.Errorf("unknown type"))
	}

	var (
		instance any
		err      error
	)
	if useArg {
		instance, err = info.newFromFlat(arg)
	} else {
		instance, err = info.newInstance()
	}
	if err != nil {
		return nil, f.fail(info.Name, err)
	}
	return instance, nil
}

func (f *factory) fail(name string, err error) error {
	return &MappingError{
		Code:    CodeConstructionFailure,
		Class:   name,
		Message: fmt.Sprintf("cannot create instance of %s", name),
		Err:     err,
	}
}
