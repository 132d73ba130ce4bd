package types

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is a decoded JSON object that remembers the order of its keys.
type Object = orderedmap.OrderedMap[string, any]

func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// Kind is the JSON runtime type of a decoded value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "other"
	}
}

// KindOf classifies v. Trees produced by encoding/json (map[string]any, float64)
// are recognized as well as the ordered trees produced by the codec package.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case json.Number, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return KindNumber
	case *Object, map[string]any:
		return KindObject
	case []any:
		return KindArray
	}
	return KindOther
}

// Entry is one member of an object or one element of an array.
type Entry struct {
	Key   string
	Value any
}

// Entries returns the members of an object in key order, or the elements of an
// array keyed by their index. Plain Go maps have no order, their keys are sorted.
// Any other value yields no entries.
func Entries(v any) []Entry {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		entries := make([]Entry, 0, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			entries = append(entries, Entry{Key: pair.Key, Value: pair.Value})
		}
		return entries
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(t))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: t[k]})
		}
		return entries
	case []any:
		entries := make([]Entry, 0, len(t))
		for i, e := range t {
			entries = append(entries, Entry{Key: strconv.Itoa(i), Value: e})
		}
		return entries
	}
	return nil
}

// ToPlain converts ordered objects, recursively, into map[string]any so the value
// can be stored in ordinary Go maps and interfaces.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = ToPlain(pair.Value)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = ToPlain(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToPlain(e)
		}
		return out
	}
	return v
}

var objectType = reflect.TypeOf((*Object)(nil))

// IsObjectType reports whether t is the ordered object type.
func IsObjectType(t reflect.Type) bool {
	return t == objectType
}
