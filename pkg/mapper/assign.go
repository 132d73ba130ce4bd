package mapper

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// assign stores value into dst, converting between the decoded representation
// and the Go type of dst. Pointers to instances are dereferenced for value
// destinations and values are copied behind a fresh pointer for pointer ones.
func assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	dt := dst.Type()
	if dt.Kind() == reflect.Interface && dt.NumMethod() == 0 {
		value = types.ToPlain(value)
	}
	src := reflect.ValueOf(value)
	if src.Type().AssignableTo(dt) {
		dst.Set(src)
		return nil
	}

	if src.Kind() == reflect.Ptr && !src.IsNil() && src.Elem().Type().AssignableTo(dt) {
		dst.Set(src.Elem())
		return nil
	}

	switch dt.Kind() {
	case reflect.Ptr:
		if src.Kind() == reflect.Ptr && src.IsNil() {
			dst.Set(reflect.Zero(dt))
			return nil
		}
		elem := reflect.New(dt.Elem())
		if err := assign(elem.Elem(), value); err != nil {
			return err
		}
		dst.Set(elem)
		return nil

	case reflect.Interface:
		if src.Kind() != reflect.Ptr && reflect.PointerTo(src.Type()).AssignableTo(dt) {
			p := reflect.New(src.Type())
			p.Elem().Set(src)
			dst.Set(p)
			return nil
		}
		if plain := types.ToPlain(value); reflect.TypeOf(plain).AssignableTo(dt) {
			dst.Set(reflect.ValueOf(plain))
			return nil
		}

	case reflect.String:
		if isScalarValue(value) {
			dst.SetString(toString(value))
			return nil
		}

	case reflect.Bool:
		if isScalarValue(value) {
			dst.SetBool(toBool(value))
			return nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isScalarValue(value) {
			i := toDecimal(value).Truncate(0).BigInt()
			if !i.IsInt64() || dst.OverflowInt(i.Int64()) {
				return fmt.Errorf("value %s overflows %s", i, dt)
			}
			dst.SetInt(i.Int64())
			return nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if isScalarValue(value) {
			u := toDecimal(value).Truncate(0).BigInt()
			if u.Sign() < 0 {
				return fmt.Errorf("negative value %s for %s", u, dt)
			}
			if !u.IsUint64() || dst.OverflowUint(u.Uint64()) {
				return fmt.Errorf("value %s overflows %s", u, dt)
			}
			dst.SetUint(u.Uint64())
			return nil
		}

	case reflect.Float32, reflect.Float64:
		if isScalarValue(value) {
			f := toFloat(value)
			if dst.OverflowFloat(f) {
				return fmt.Errorf("value %v overflows %s", f, dt)
			}
			dst.SetFloat(f)
			return nil
		}

	case reflect.Slice:
		if entries, ok := collectionEntries(value); ok {
			out := reflect.MakeSlice(dt, 0, len(entries))
			for _, e := range entries {
				elem := reflect.New(dt.Elem()).Elem()
				if err := assign(elem, elementValue(dt.Elem(), e.Value)); err != nil {
					return fmt.Errorf("element %s: %w", e.Key, err)
				}
				out = reflect.Append(out, elem)
			}
			dst.Set(out)
			return nil
		}

	case reflect.Array:
		if entries, ok := collectionEntries(value); ok {
			out := reflect.New(dt).Elem()
			for i, e := range entries {
				if i >= dt.Len() {
					break
				}
				if err := assign(out.Index(i), e.Value); err != nil {
					return fmt.Errorf("element %s: %w", e.Key, err)
				}
			}
			dst.Set(out)
			return nil
		}

	case reflect.Map:
		if entries, ok := collectionEntries(value); ok {
			out := reflect.MakeMapWithSize(dt, len(entries))
			for _, e := range entries {
				key, err := mapKey(dt.Key(), e.Key)
				if err != nil {
					return err
				}
				elem := reflect.New(dt.Elem()).Elem()
				if err := assign(elem, elementValue(dt.Elem(), e.Value)); err != nil {
					return fmt.Errorf("element %s: %w", e.Key, err)
				}
				out.SetMapIndex(key, elem)
			}
			dst.Set(out)
			return nil
		}
	}

	if src.Type().ConvertibleTo(dt) {
		dst.Set(src.Convert(dt))
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", src.Type(), dt)
}

// elementValue hands plain maps to untyped collection elements.
func elementValue(elemType reflect.Type, value any) any {
	if elemType.Kind() == reflect.Interface && elemType.NumMethod() == 0 {
		return types.ToPlain(value)
	}
	return value
}

func isScalarValue(value any) bool {
	switch types.KindOf(value) {
	case types.KindBool, types.KindNumber, types.KindString:
		return true
	}
	return false
}

// collectionEntries returns the entries of decoded arrays and objects, and of
// ArrayObject containers.
func collectionEntries(value any) ([]types.Entry, bool) {
	switch types.KindOf(value) {
	case types.KindArray, types.KindObject:
		return types.Entries(value), true
	}
	if ao, ok := value.(*types.ArrayObject); ok {
		keys := ao.Keys()
		values := ao.Values()
		entries := make([]types.Entry, len(keys))
		for i := range keys {
			entries[i] = types.Entry{Key: keys[i], Value: values[i]}
		}
		return entries, true
	}
	return nil, false
}

// mapKey converts a JSON member name or array index into a Go map key.
func mapKey(kt reflect.Type, key string) (reflect.Value, error) {
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(key).Convert(kt), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid map key %q for %s: %w", key, kt, err)
		}
		return reflect.ValueOf(i).Convert(kt), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid map key %q for %s: %w", key, kt, err)
		}
		return reflect.ValueOf(u).Convert(kt), nil
	case reflect.Interface:
		if kt.NumMethod() == 0 {
			return reflect.ValueOf(key), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("unsupported map key type %s", kt)
}
