package types

// ArrayAccess is implemented by container types that accept keyed elements.
// A member declared with such a type is filled as a collection rather than
// mapped as a nested object.
type ArrayAccess interface {
	OffsetSet(key string, value any)
}

// ArrayObject is an ordered keyed container, the default ArrayAccess implementation.
type ArrayObject struct {
	items *Object
}

func NewArrayObject() *ArrayObject {
	return &ArrayObject{items: NewObject()}
}

func (a *ArrayObject) OffsetSet(key string, value any) {
	if a.items == nil {
		a.items = NewObject()
	}
	a.items.Set(key, value)
}

func (a *ArrayObject) OffsetGet(key string) (any, bool) {
	if a.items == nil {
		return nil, false
	}
	return a.items.Get(key)
}

func (a *ArrayObject) Len() int {
	if a.items == nil {
		return 0
	}
	return a.items.Len()
}

// Keys returns the keys in insertion order.
func (a *ArrayObject) Keys() []string {
	if a.items == nil {
		return nil
	}
	keys := make([]string, 0, a.items.Len())
	for pair := a.items.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns the stored values in insertion order.
func (a *ArrayObject) Values() []any {
	if a.items == nil {
		return nil
	}
	values := make([]any, 0, a.items.Len())
	for pair := a.items.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}
