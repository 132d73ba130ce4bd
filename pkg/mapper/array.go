package mapper

import (
	"fmt"
	"reflect"

	"github.com/noders-team/go-jsonmapper/pkg/codec"
	"github.com/noders-team/go-jsonmapper/pkg/typeexpr"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// collector stores the mapped elements of a collection.
type collector interface {
	// elem is the Go element type, nil when elements are stored untyped.
	elem() reflect.Type
	put(key string, value any) error
}

type sliceCollector struct {
	ptr reflect.Value
}

func (c sliceCollector) elem() reflect.Type {
	return c.ptr.Type().Elem().Elem()
}

func (c sliceCollector) put(_ string, value any) error {
	et := c.elem()
	e := reflect.New(et).Elem()
	if err := assign(e, elementValue(et, value)); err != nil {
		return err
	}
	c.ptr.Elem().Set(reflect.Append(c.ptr.Elem(), e))
	return nil
}

type mapCollector struct {
	m reflect.Value
}

func (c mapCollector) elem() reflect.Type {
	return c.m.Type().Elem()
}

func (c mapCollector) put(key string, value any) error {
	k, err := mapKey(c.m.Type().Key(), key)
	if err != nil {
		return err
	}
	et := c.elem()
	e := reflect.New(et).Elem()
	if err := assign(e, elementValue(et, value)); err != nil {
		return err
	}
	c.m.SetMapIndex(k, e)
	return nil
}

type accessCollector struct {
	container types.ArrayAccess
}

func (accessCollector) elem() reflect.Type {
	return nil
}

func (c accessCollector) put(key string, value any) error {
	c.container.OffsetSet(key, value)
	return nil
}

func newCollector(container any) (collector, error) {
	if aa, ok := container.(types.ArrayAccess); ok {
		return accessCollector{container: aa}, nil
	}

	rv := reflect.ValueOf(container)
	switch {
	case rv.Kind() == reflect.Map && !rv.IsNil():
		return mapCollector{m: rv}, nil
	case rv.Kind() == reflect.Ptr && !rv.IsNil():
		switch rv.Elem().Kind() {
		case reflect.Slice:
			return sliceCollector{ptr: rv}, nil
		case reflect.Map:
			if rv.Elem().IsNil() {
				rv.Elem().Set(reflect.MakeMap(rv.Elem().Type()))
			}
			return mapCollector{m: rv.Elem()}, nil
		}
	}
	return nil, &ArgumentError{Message: fmt.Sprintf(
		"mapper: container must be a pointer to a slice, a map or a types.ArrayAccess, %T given", container)}
}

// MapArray fills container from json, a decoded array or object, and returns
// the same container. container is a pointer to a slice, a map (or a pointer
// to one) or a types.ArrayAccess. elem is the declared element type; bare
// names resolve against the package of the container's element type, and an
// empty elem stores values unconverted. A types.ArrayAccess has no element
// type, so named element types must be qualified for it.
func (m *Mapper) MapArray(json any, container any, elem string) (any, error) {
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
	if !isCollection(json) {
		return nil, &ArgumentError{Message: fmt.Sprintf("mapper: MapArray requires an array or object as input, %s given", types.KindOf(json))}
	}

	c, err := newCollector(container)
	if err != nil {
		return nil, err
	}
	pkg := ""
	sc := scope{}
	if et := c.elem(); et != nil {
		for et.Kind() == reflect.Ptr || et.Kind() == reflect.Slice {
			et = et.Elem()
		}
		pkg = et.PkgPath()
		sc = m.inspector.scope(et)
	}

	normalized := elemType(elem, pkg)
	if base := baseElem(normalized); pkg == "" && base != "" && !typeexpr.IsSimple(base) && !typeexpr.IsQualified(base) {
		return nil, &ArgumentError{Message: fmt.Sprintf(
			"mapper: element type %q must be qualified with its import path when the container has no named element type", elem)}
	}

	if err := m.fill(json, c, normalized, sc); err != nil {
		return nil, err
	}
	return container, nil
}

// baseElem strips the "[]" suffixes of a normalized element type.
func baseElem(elem string) string {
	for {
		inner, ok := typeexpr.ArrayElem(elem)
		if !ok {
			return elem
		}
		elem = inner
	}
}

// mapArray fills container with elements of the normalized element type elem.
func (m *Mapper) mapArray(json any, container any, elem string, sc scope) (any, error) {
	c, err := newCollector(container)
	if err != nil {
		return nil, err
	}
	if err := m.fill(json, c, elem, sc); err != nil {
		return nil, err
	}
	return collectionValue(container), nil
}

func (m *Mapper) fill(json any, c collector, elem string, sc scope) error {
	for _, entry := range types.Entries(json) {
		key := safeName(entry.Key)
		value, err := m.element(entry.Value, c, elem, sc)
		if err != nil {
			return withProperty(err, key)
		}
		if err := c.put(key, value); err != nil {
			return &MappingError{
				Code:     CodeAssignmentFailure,
				Property: key,
				Message:  fmt.Sprintf("cannot store element %q", key),
				Err:      err,
			}
		}
	}
	return nil
}

// element converts one collection value into its element type.
func (m *Mapper) element(value any, c collector, elem string, sc scope) (any, error) {
	if elem == "" || value == nil {
		return value, nil
	}

	if typeexpr.IsFlat(types.KindOf(value)) {
		if typeexpr.IsSimple(elem) {
			return coerce(value, elem), nil
		}
		return m.factory.create(elem, true, value, sc)
	}

	if inner, ok := typeexpr.ArrayElem(elem); ok {
		return m.mapArray(value, nativeContainer(c.elem(), value), inner, sc)
	}
	if typeexpr.IsSimple(elem) {
		return coerce(value, elem), nil
	}
	return m.build(elem, value, sc)
}

// collectionValue dereferences pointers to slices so the slice itself is stored.
func collectionValue(container any) any {
	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Slice {
		return rv.Elem().Interface()
	}
	return container
}
