package mapper

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/noders-team/go-jsonmapper/pkg/annotation"
	"github.com/noders-team/go-jsonmapper/pkg/typeexpr"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// Documented is implemented by types exposing doc metadata for their members,
// keyed by Go member name ("Name", "SetName"). The jsonmapper gen command
// generates it from source comments.
type Documented interface {
	MemberDocs() map[string]string
}

// TypeCatalog is implemented by types listing the named types of their
// package as typed nil pointers, so names used only in doc metadata resolve.
// The jsonmapper gen command generates it for every struct it scans.
type TypeCatalog interface {
	PackageTypes() []any
}

const tagName = "mapper"

type accessorKind int

const (
	accessorNone accessorKind = iota
	accessorSetter
	accessorField
)

// member is the cached inspection result for one (type, key) pair.
type member struct {
	exists   bool
	name     string
	accessor accessorKind
	method   string
	index    []int
	exported bool
	// dst is the Go type receiving the value, the field type or the setter parameter.
	dst reflect.Type
	// declared is the declared type string; typed is false when none was found,
	// which makes the member mixed.
	declared string
	typed    bool
	required bool
}

type inspectKey struct {
	t   reflect.Type
	key string
}

type inspector struct {
	mu               sync.RWMutex
	members          map[inspectKey]*member
	docs             map[reflect.Type]map[string]annotation.Annotations
	scopes           map[reflect.Type]scope
	ignoreVisibility bool
}

func newInspector(ignoreVisibility bool) *inspector {
	return &inspector{
		members:          make(map[inspectKey]*member),
		docs:             make(map[reflect.Type]map[string]annotation.Annotations),
		scopes:           make(map[reflect.Type]scope),
		ignoreVisibility: ignoreVisibility,
	}
}

// inspect resolves the member of struct type t addressed by the raw input key.
func (in *inspector) inspect(t reflect.Type, key string) *member {
	k := inspectKey{t: t, key: key}
	in.mu.RLock()
	m, ok := in.members[k]
	in.mu.RUnlock()
	if ok {
		return m
	}

	m = in.resolve(t, key)

	in.mu.Lock()
	in.members[k] = m
	in.mu.Unlock()
	return m
}

func (in *inspector) resolve(t reflect.Type, key string) *member {
	if strings.TrimSpace(key) == "" {
		return &member{}
	}
	name := safeName(key)

	if m, ok := in.setter(t, name); ok {
		return m
	}

	field, ok := findField(t, key, name)
	if !ok {
		return &member{}
	}

	m := &member{
		exists:   true,
		name:     field.Name,
		index:    field.Index,
		exported: field.IsExported(),
		dst:      field.Type,
	}
	m.declared, m.typed, m.required = in.fieldMeta(t, field)
	if m.exported || in.ignoreVisibility {
		m.accessor = accessorField
	}
	return m
}

// setter looks up the exported Set<Name> method of *t taking one argument and
// returning nothing or an error.
func (in *inspector) setter(t reflect.Type, name string) (*member, bool) {
	memberName := camelCase(name)
	methodName := "Set" + memberName
	method, ok := reflect.PointerTo(t).MethodByName(methodName)
	if !ok {
		return nil, false
	}
	mt := method.Type
	if mt.NumIn() != 2 || mt.NumOut() > 1 || (mt.NumOut() == 1 && mt.Out(0) != errorType) {
		return nil, false
	}

	param := mt.In(1)
	m := &member{
		exists:   true,
		name:     memberName,
		accessor: accessorSetter,
		method:   methodName,
		exported: true,
		dst:      param,
	}

	if declared, typed := goTypeString(param); typed {
		m.declared, m.typed = declared, true
		return m, true
	}

	if typ, ok := in.annotations(t, methodName).DeclaredType("param"); ok {
		m.declared, m.typed = typ, true
	}
	return m, true
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// fieldMeta returns the declared type and required flag of a field. The
// declared type comes from the "type=" tag option, then the @var annotation,
// then the Go type of the field.
func (in *inspector) fieldMeta(t reflect.Type, field reflect.StructField) (declared string, typed, required bool) {
	docs := in.annotations(t, field.Name)
	tag := parseTag(field.Tag.Get(tagName))
	required = tag.required || docs.Has("required")

	if tag.hasType {
		return tag.typ, true, required
	}
	if typ, ok := docs.DeclaredType("var"); ok {
		return typ, true, required
	}
	declared, typed = goTypeString(field.Type)
	return declared, typed, required
}

// annotations returns the parsed doc metadata of one member of t.
func (in *inspector) annotations(t reflect.Type, memberName string) annotation.Annotations {
	in.mu.RLock()
	docs, ok := in.docs[t]
	in.mu.RUnlock()

	if !ok {
		docs = make(map[string]annotation.Annotations)
		if d, isDocumented := reflect.New(t).Interface().(Documented); isDocumented {
			for name, text := range d.MemberDocs() {
				docs[name] = annotation.Parse(text)
			}
		}
		in.mu.Lock()
		in.docs[t] = docs
		in.mu.Unlock()
	}

	if a, ok := docs[memberName]; ok {
		return a
	}
	return annotation.Annotations{}
}

// scope returns the named types t refers to: t itself, the types of its
// fields and setter parameters, and the types listed by its TypeCatalog. It
// depends on t alone, never on what was mapped before.
func (in *inspector) scope(t reflect.Type) scope {
	in.mu.RLock()
	sc, ok := in.scopes[t]
	in.mu.RUnlock()
	if ok {
		return sc
	}

	sc = make(scope)
	sc.add(t)
	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			sc.add(f.Type)
		}
	}
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		method := pt.Method(i)
		if strings.HasPrefix(method.Name, "Set") && method.Type.NumIn() == 2 {
			sc.add(method.Type.In(1))
		}
	}
	if catalog, isCatalog := reflect.New(t).Interface().(TypeCatalog); isCatalog {
		for _, v := range catalog.PackageTypes() {
			if vt := reflect.TypeOf(v); vt != nil {
				sc.add(vt)
			}
		}
	}

	in.mu.Lock()
	in.scopes[t] = sc
	in.mu.Unlock()
	return sc
}

// requiredFields lists the fields of t flagged required.
func (in *inspector) requiredFields(t reflect.Type) []reflect.StructField {
	var fields []reflect.StructField
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || jsonName(f) == "-" {
			continue
		}
		if _, _, required := in.fieldMeta(t, f); required {
			fields = append(fields, f)
		}
	}
	return fields
}

// findField matches the key against field names and json tag names, exactly
// first, then case-insensitively, then against the camel-cased key.
func findField(t reflect.Type, key, name string) (reflect.StructField, bool) {
	fields := make([]reflect.StructField, 0, t.NumField())
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || jsonName(f) == "-" {
			continue
		}
		fields = append(fields, f)
	}

	for _, f := range fields {
		tag := jsonName(f)
		if f.Name == name || (tag != "" && (tag == key || tag == name)) {
			return f, true
		}
	}
	for _, f := range fields {
		tag := jsonName(f)
		if strings.EqualFold(f.Name, name) || (tag != "" && strings.EqualFold(tag, name)) {
			return f, true
		}
	}
	camel := camelCase(key)
	for _, f := range fields {
		if strings.EqualFold(f.Name, camel) {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

type tagOptions struct {
	typ      string
	hasType  bool
	required bool
}

// parseTag reads `mapper:"type=Child[]|null,required"`.
func parseTag(tag string) tagOptions {
	var opts tagOptions
	if tag == "" {
		return opts
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "required":
			opts.required = true
		case strings.HasPrefix(part, "type="):
			opts.typ = strings.TrimPrefix(part, "type=")
			opts.hasType = true
		}
	}
	return opts
}

// goTypeString derives a declared type string from a Go type. typed is false
// for empty interfaces and for types with no JSON counterpart.
func goTypeString(t reflect.Type) (string, bool) {
	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return "", false
		}
		return TypeName(t), true
	case reflect.Ptr:
		if types.IsObjectType(t) {
			return typeexpr.ScalarObject + "|null", true
		}
		elem, ok := goTypeString(t.Elem())
		if !ok {
			return "", false
		}
		return elem + "|null", true
	case reflect.Bool:
		return typeexpr.ScalarBool, true
	case reflect.String:
		return typeexpr.ScalarString, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typeexpr.ScalarInt, true
	case reflect.Float32, reflect.Float64:
		return typeexpr.ScalarFloat, true
	case reflect.Slice, reflect.Array:
		elem := t.Elem()
		for elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if t.Kind() == reflect.Slice && elem.Kind() == reflect.Uint8 {
			return typeexpr.ScalarString, true
		}
		s, ok := goTypeString(elem)
		if !ok {
			return typeexpr.ScalarArray, true
		}
		return s + "[]", true
	case reflect.Map:
		elem := t.Elem()
		for elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		s, ok := goTypeString(elem)
		if !ok {
			return typeexpr.ScalarArray, true
		}
		return typeexpr.ScalarArray + "[" + s + "]", true
	case reflect.Struct:
		// anonymous structs and generic instantiations have no usable name
		if t.Name() == "" || strings.Contains(t.Name(), "[") {
			return "", false
		}
		return TypeName(t), true
	}
	return "", false
}

// fieldValue returns a settable view of the field, bypassing export rules for
// unexported fields.
func fieldValue(v reflect.Value, m *member) (reflect.Value, error) {
	f, err := v.FieldByIndexErr(m.index)
	if err != nil {
		return reflect.Value{}, err
	}
	if !f.CanSet() {
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	}
	return f, nil
}
