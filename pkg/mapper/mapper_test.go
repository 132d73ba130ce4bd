package mapper_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noders-team/go-jsonmapper/pkg/codec"
	"github.com/noders-team/go-jsonmapper/pkg/mapper"
	"github.com/noders-team/go-jsonmapper/pkg/types"
)

type Email string

type Person struct {
	Name  string `json:"name"`
	Age   int    `json:"age"`
	Email Email  `json:"email"`
}

type Child struct {
	Name string `json:"name"`
}

type Family struct {
	Tags     []string       `json:"tags"`
	Child    *Child         `json:"child"`
	Children []Child        `json:"children"`
	Scores   map[string]int `json:"scores"`
	Grid     [][]int        `json:"grid"`
	Extra    any            `json:"extra_data"`
}

type StrictChild struct {
	Child Child `json:"child"`
}

type Account struct {
	ID       string  `json:"id" mapper:"required"`
	Nickname *string `json:"nickname" mapper:"required"`
	Note     string  `json:"note"`
}

type Animal interface {
	Sound() string
}

type Dog struct {
	Name string `json:"name"`
}

func (d *Dog) Sound() string { return d.Name + ": woof" }

type Zoo struct {
	Pet  Animal   `json:"pet"`
	Pets []Animal `json:"pets"`
}

type Blank struct {
	Anything any `json:"anything" mapper:"type="`
}

type Documented struct {
	Items any `json:"items"`
	Count any `json:"count"`
}

func (Documented) MemberDocs() map[string]string {
	return map[string]string{
		"Items": "@var Child[]",
		"Count": "@var int",
	}
}

type Hidden struct {
	Visible string `json:"visible"`
	secret  string
}

type Settable struct {
	name  string
	score float64
}

func (s *Settable) SetName(name string) error {
	if name == "" {
		return errors.New("name must not be empty")
	}
	s.name = "set:" + name
	return nil
}

func (s *Settable) SetScore(v any) {
	s.score, _ = v.(float64)
}

func (Settable) MemberDocs() map[string]string {
	return map[string]string{
		"SetScore": "@param float $score",
	}
}

type Names struct {
	FirstName string
	LastName  string
}

type Bagged struct {
	Bag    *types.ArrayObject `json:"bag"`
	Typed  *types.ArrayObject `json:"typed" mapper:"type=github.com/noders-team/go-jsonmapper/pkg/types.ArrayObject[Child]"`
	Counts map[string]any     `json:"counts"`
}

type Event struct {
	At     time.Time       `json:"at"`
	Amount decimal.Decimal `json:"amount"`
}

type Badge struct {
	Label string `json:"label"`
}

type Roster struct {
	Items any `json:"items"`
}

func (Roster) MemberDocs() map[string]string {
	return map[string]string{"Items": "@var Badge[]"}
}

func (Roster) PackageTypes() []any {
	return []any{(*Badge)(nil), (*Roster)(nil)}
}

type Stray struct {
	Name string `json:"name"`
}

type Keeper struct {
	Stray Stray `json:"stray"`
}

type Orphans struct {
	Items any `json:"items"`
}

func (Orphans) MemberDocs() map[string]string {
	return map[string]string{"Items": "@var Stray[]"}
}

type Loose struct {
	Any      any `json:"any"`
	Doc      any `json:"doc"`
	Optional any `json:"optional"`
}

func (Loose) MemberDocs() map[string]string {
	return map[string]string{
		"Doc":      "@var mixed",
		"Optional": "@var mixed|null",
	}
}

type Tagged struct {
	Name string
	Role string `json:"role"`
}

type Narrow struct {
	Small int8    `json:"small"`
	Count uint    `json:"count"`
	Ratio float32 `json:"ratio"`
}

type logEntry struct {
	level   zerolog.Level
	message string
	context map[string]any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) Log(level zerolog.Level, message string, context map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, message: message, context: context})
}

func TestMapper_Map_Coercion(t *testing.T) {
	m := mapper.New()

	tests := []struct {
		name     string
		input    string
		expected Person
	}{
		{
			name:     "string to int",
			input:    `{"name": "Ann", "age": "7"}`,
			expected: Person{Name: "Ann", Age: 7},
		},
		{
			name:     "numeric prefix",
			input:    `{"age": "12 years"}`,
			expected: Person{Age: 12},
		},
		{
			name:     "float truncates",
			input:    `{"age": 7.9}`,
			expected: Person{Age: 7},
		},
		{
			name:     "number to string",
			input:    `{"name": 42}`,
			expected: Person{Name: "42"},
		},
		{
			name:     "bool to string",
			input:    `{"name": true}`,
			expected: Person{Name: "1"},
		},
		{
			name:     "named string type",
			input:    `{"email": "ann@example.com"}`,
			expected: Person{Email: "ann@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Person
			result, err := m.Map(tt.input, &p)
			require.NoError(t, err)
			assert.Same(t, &p, result)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestMapper_Map_Idempotent(t *testing.T) {
	m := mapper.New()
	input, err := codec.DecodeString(`{
		"tags": ["a", "b"],
		"child": {"name": "Bob"},
		"children": [{"name": "C1"}, {"name": "C2"}],
		"scores": {"math": "5", "art": 3},
		"grid": [[1, 2], [3]],
		"extra_data": {"nested": [1, "two"]}
	}`)
	require.NoError(t, err)

	var first, second Family
	_, err = m.Map(input, &first)
	require.NoError(t, err)
	_, err = m.Map(input, &second)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("mapping differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []string{"a", "b"}, first.Tags)
	require.NotNil(t, first.Child)
	assert.Equal(t, "Bob", first.Child.Name)
	assert.Equal(t, []Child{{Name: "C1"}, {Name: "C2"}}, first.Children)
	assert.Equal(t, map[string]int{"math": 5, "art": 3}, first.Scores)
	assert.Equal(t, [][]int{{1, 2}, {3}}, first.Grid)
}

func TestMapper_Map_Collections(t *testing.T) {
	m := mapper.New()

	t.Run("array of objects keeps order", func(t *testing.T) {
		f, err := mapper.MapInto[Family](m, `{"children": [{"name": "a"}, {"name": "b"}, {"name": "c"}]}`)
		require.NoError(t, err)
		require.Len(t, f.Children, 3)
		assert.Equal(t, "a", f.Children[0].Name)
		assert.Equal(t, "b", f.Children[1].Name)
		assert.Equal(t, "c", f.Children[2].Name)
	})

	t.Run("scalar for array", func(t *testing.T) {
		_, err := mapper.MapInto[Family](m, `{"tags": "a"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrArrayTypeMismatch)
	})

	t.Run("untyped member keeps decoded value", func(t *testing.T) {
		f, err := mapper.MapInto[Family](m, `{"extra_data": {"k": [true, null]}}`)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"k": []any{true, nil}}, f.Extra)
	})

	t.Run("array object container", func(t *testing.T) {
		mapper.Register[Child](m.Registry())
		b, err := mapper.MapInto[Bagged](m, `{"bag": {"x": 1, "y": "two"}, "typed": {"first": {"name": "A"}}}`)
		require.NoError(t, err)
		require.NotNil(t, b.Bag)
		assert.Equal(t, []string{"x", "y"}, b.Bag.Keys())
		y, ok := b.Bag.OffsetGet("y")
		require.True(t, ok)
		assert.Equal(t, "two", y)

		require.NotNil(t, b.Typed)
		first, ok := b.Typed.OffsetGet("first")
		require.True(t, ok)
		assert.Equal(t, &Child{Name: "A"}, first)
	})
}

func TestMapper_Map_Nullability(t *testing.T) {
	t.Run("nullable member accepts null", func(t *testing.T) {
		for _, strict := range []bool{true, false} {
			m := mapper.New(mapper.WithExceptionWhenNullType(strict))
			f := Family{Child: &Child{Name: "old"}}
			_, err := m.Map(`{"child": null}`, &f)
			require.NoError(t, err)
			assert.Nil(t, f.Child)
		}
	})

	t.Run("non-nullable member rejects null", func(t *testing.T) {
		m := mapper.New()
		var s StrictChild
		_, err := m.Map(`{"child": null}`, &s)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrNullNotAllowed)

		var me *mapper.MappingError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, mapper.CodeNullNotAllowed, me.Code)
		assert.Equal(t, "child", me.Property)
	})

	t.Run("mixed member rejects null", func(t *testing.T) {
		m := mapper.New()
		for _, input := range []string{`{"any": null}`, `{"doc": null}`} {
			_, err := mapper.MapInto[Loose](m, input)
			require.Error(t, err, input)
			assert.ErrorIs(t, err, mapper.ErrNullNotAllowed, input)
		}

		l, err := mapper.MapInto[Loose](m, `{"optional": null}`)
		require.NoError(t, err)
		assert.Nil(t, l.Optional)
	})

	t.Run("mixed member accepts null when not strict", func(t *testing.T) {
		m := mapper.New(mapper.WithExceptionWhenNullType(false))
		l := Loose{Any: "old", Doc: "old"}
		_, err := m.Map(`{"any": null, "doc": null}`, &l)
		require.NoError(t, err)
		assert.Nil(t, l.Any)
		assert.Nil(t, l.Doc)
	})

	t.Run("null strictness disabled", func(t *testing.T) {
		m := mapper.New(mapper.WithExceptionWhenNullType(false))
		p := Person{Name: "old"}
		_, err := m.Map(`{"name": null}`, &p)
		require.NoError(t, err)
		assert.Empty(t, p.Name)
	})
}

func TestMapper_Map_UndefinedProperty(t *testing.T) {
	t.Run("logged once", func(t *testing.T) {
		logger := &recordingLogger{}
		m := mapper.New(mapper.WithLogger(logger))

		var p Person
		_, err := m.Map(`{"name": "Ann", "extra": 1, "age": 3}`, &p)
		require.NoError(t, err)
		assert.Equal(t, Person{Name: "Ann", Age: 3}, p)

		require.Len(t, logger.entries, 1)
		assert.Equal(t, zerolog.InfoLevel, logger.entries[0].level)
		assert.Equal(t, "Property {property} does not exist in {class}", logger.entries[0].message)
		assert.Equal(t, "extra", logger.entries[0].context["property"])
		assert.Equal(t, mapper.TypeName(reflect.TypeOf(p)), logger.entries[0].context["class"])
	})

	t.Run("handler replaces logging", func(t *testing.T) {
		logger := &recordingLogger{}
		var seen []string
		m := mapper.New(
			mapper.WithLogger(logger),
			mapper.WithUndefinedPropertyHandler(func(target any, key string, value any) {
				_, ok := target.(*Person)
				assert.True(t, ok)
				seen = append(seen, fmt.Sprintf("%s=%v", key, value))
			}),
		)

		var p Person
		_, err := m.Map(`{"extra": "x", "name": "Ann"}`, &p)
		require.NoError(t, err)
		assert.Equal(t, []string{"extra=x"}, seen)
		assert.Empty(t, logger.entries)
	})

	t.Run("exception", func(t *testing.T) {
		m := mapper.New(mapper.WithExceptionWhenUndefinedProperty(true))
		var p Person
		_, err := m.Map(`{"extra": 1}`, &p)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrUndefinedProperty)

		var me *mapper.MappingError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "extra", me.Property)
	})

	t.Run("empty key matches no member", func(t *testing.T) {
		strict := mapper.New(mapper.WithExceptionWhenUndefinedProperty(true))
		var tg Tagged
		_, err := strict.Map(`{"": "oops"}`, &tg)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrUndefinedProperty)

		logger := &recordingLogger{}
		lenient := mapper.New(mapper.WithLogger(logger))
		tg = Tagged{Name: "Ann"}
		_, err = lenient.Map(`{"": "oops", "role": "admin"}`, &tg)
		require.NoError(t, err)
		assert.Equal(t, Tagged{Name: "Ann", Role: "admin"}, tg)
		require.Len(t, logger.entries, 1)
		assert.Equal(t, "", logger.entries[0].context["property"])
	})
}

func TestMapper_Map_RequiredProperties(t *testing.T) {
	m := mapper.New(mapper.WithExceptionWhenMissingData(true))

	tests := []struct {
		name    string
		input   string
		missing string
	}{
		{name: "all present", input: `{"id": "1", "nickname": "n"}`},
		{name: "explicit null for nullable", input: `{"id": "1", "nickname": null}`},
		{name: "case-insensitive key", input: `{"ID": "1", "NickName": "n"}`},
		{name: "id missing", input: `{"nickname": "n"}`, missing: "ID"},
		{name: "nickname missing", input: `{"id": "1", "note": "x"}`, missing: "Nickname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Account
			_, err := m.Map(tt.input, &a)
			if tt.missing == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, mapper.ErrMissingRequiredProperty)
			var me *mapper.MappingError
			require.True(t, errors.As(err, &me))
			assert.Equal(t, tt.missing, me.Property)
			assert.Contains(t, me.Class, "Account")
		})
	}

	t.Run("not enforced by default", func(t *testing.T) {
		var a Account
		_, err := mapper.New().Map(`{}`, &a)
		require.NoError(t, err)
	})
}

func TestMapper_Map_Override(t *testing.T) {
	t.Run("class map", func(t *testing.T) {
		m := mapper.New(mapper.WithOverrideClass("Animal", "Dog"))
		mapper.Register[Dog](m.Registry())

		z, err := mapper.MapInto[Zoo](m, `{"pet": {"name": "Rex"}, "pets": [{"name": "A"}, {"name": "B"}]}`)
		require.NoError(t, err)

		dog, ok := z.Pet.(*Dog)
		require.True(t, ok)
		assert.Equal(t, "Rex", dog.Name)
		assert.Equal(t, "Rex: woof", z.Pet.Sound())
		require.Len(t, z.Pets, 2)
		assert.Equal(t, "B: woof", z.Pets[1].Sound())
	})

	t.Run("factory", func(t *testing.T) {
		created := 0
		m := mapper.New(mapper.WithOverrideFactory("Animal", func() any {
			created++
			return &Dog{}
		}))

		z, err := mapper.MapInto[Zoo](m, `{"pet": {"name": "Rex"}}`)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
		assert.IsType(t, &Dog{}, z.Pet)
	})

	t.Run("interface without override", func(t *testing.T) {
		_, err := mapper.MapInto[Zoo](mapper.New(), `{"pet": {"name": "Rex"}}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrConstructionFailure)
	})
}

func TestMapper_Map_DeclaredTypes(t *testing.T) {
	m := mapper.New()
	mapper.Register[Child](m.Registry())

	t.Run("empty type", func(t *testing.T) {
		_, err := mapper.MapInto[Blank](m, `{"anything": 1}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrEmptyType)
	})

	t.Run("doc metadata", func(t *testing.T) {
		d, err := mapper.MapInto[Documented](m, `{"items": [{"name": "x"}], "count": "3"}`)
		require.NoError(t, err)
		assert.Equal(t, []any{&Child{Name: "x"}}, d.Items)
		assert.Equal(t, int64(3), d.Count)
	})
}

func TestMapper_Map_Setters(t *testing.T) {
	m := mapper.New()

	s, err := mapper.MapInto[Settable](m, `{"name": "Ann", "score": "2.5"}`)
	require.NoError(t, err)
	assert.Equal(t, "set:Ann", s.name)
	assert.InDelta(t, 2.5, s.score, 1e-9)

	_, err = mapper.MapInto[Settable](m, `{"name": ""}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, mapper.ErrAssignmentFailure)
}

func TestMapper_Map_Visibility(t *testing.T) {
	t.Run("unexported field is skipped", func(t *testing.T) {
		logger := &recordingLogger{}
		m := mapper.New(mapper.WithLogger(logger))
		h, err := mapper.MapInto[Hidden](m, `{"visible": "v", "secret": "s"}`)
		require.NoError(t, err)
		assert.Equal(t, "v", h.Visible)
		assert.Empty(t, h.secret)
		require.Len(t, logger.entries, 1)
		assert.Equal(t, "Property {property} has no public setter method in {class}", logger.entries[0].message)
	})

	t.Run("unexported field fails when strict", func(t *testing.T) {
		m := mapper.New(mapper.WithExceptionWhenUndefinedProperty(true))
		_, err := mapper.MapInto[Hidden](m, `{"secret": "s"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrNoAccessibleSetter)
	})

	t.Run("ignore visibility", func(t *testing.T) {
		m := mapper.New(mapper.WithIgnoreVisibility(true))
		h, err := mapper.MapInto[Hidden](m, `{"secret": "s"}`)
		require.NoError(t, err)
		assert.Equal(t, "s", h.secret)
	})
}

func TestMapper_Map_KeyNormalization(t *testing.T) {
	m := mapper.New()

	tests := []struct {
		name  string
		input string
	}{
		{name: "hyphenated", input: `{"first-name": "Ann", "last-name": "Lee"}`},
		{name: "snake case", input: `{"first_name": "Ann", "last_name": "Lee"}`},
		{name: "lower case", input: `{"firstname": "Ann", "lastname": "Lee"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := mapper.MapInto[Names](m, tt.input)
			require.NoError(t, err)
			assert.Equal(t, Names{FirstName: "Ann", LastName: "Lee"}, *n)
		})
	}
}

func TestMapper_Map_FlatConstruction(t *testing.T) {
	t.Run("time and decimal", func(t *testing.T) {
		e, err := mapper.MapInto[Event](mapper.New(), `{"at": "2024-01-02T03:04:05Z", "amount": "12.50"}`)
		require.NoError(t, err)
		assert.True(t, e.At.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
		assert.True(t, e.Amount.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("unix seconds", func(t *testing.T) {
		e, err := mapper.MapInto[Event](mapper.New(), `{"at": 1700000000}`)
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), e.At.Unix())
	})

	t.Run("invalid timestamp", func(t *testing.T) {
		_, err := mapper.MapInto[Event](mapper.New(), `{"at": "yesterday"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrConstructionFailure)
	})

	t.Run("scalar for nested struct", func(t *testing.T) {
		strict := mapper.New(mapper.WithStrictObjectTypeChecking(true))
		_, err := mapper.MapInto[StrictChild](strict, `{"child": "Ann"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrObjectTypeMismatch)

		var me *mapper.MappingError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, "child", me.Property)

		_, err = mapper.MapInto[StrictChild](mapper.New(), `{"child": "Ann"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrConstructionFailure)
	})

	t.Run("strict object type checking", func(t *testing.T) {
		m := mapper.New(mapper.WithStrictObjectTypeChecking(true))
		_, err := mapper.MapInto[Event](m, `{"at": "2024-01-02T03:04:05Z"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrObjectTypeMismatch)
	})
}

func TestMapper_Map_Arguments(t *testing.T) {
	m := mapper.New()

	t.Run("top-level array", func(t *testing.T) {
		var p Person
		_, err := m.Map(`[1, 2]`, &p)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrInvalidArgument)
		var ae *mapper.ArgumentError
		assert.True(t, errors.As(err, &ae))
	})

	t.Run("top-level array allowed", func(t *testing.T) {
		var n Names
		_, err := mapper.New(mapper.WithEnforceMapType(false)).Map([]any{"x"}, &n)
		require.NoError(t, err)
	})

	t.Run("target not a pointer", func(t *testing.T) {
		_, err := m.Map(`{}`, Person{})
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrInvalidArgument)
	})

	t.Run("invalid JSON text", func(t *testing.T) {
		var p Person
		_, err := m.MapJSON([]byte(`{"name": `), &p)
		require.Error(t, err)
		var de *codec.DecodeError
		assert.True(t, errors.As(err, &de))
		assert.ErrorIs(t, err, codec.ErrInvalidJSON)
	})
}

func TestMapper_MapArray(t *testing.T) {
	m := mapper.New()

	t.Run("slice identity", func(t *testing.T) {
		children := []Child{{Name: "seed"}}
		result, err := m.MapArray(`[{"name": "a"}, {"name": "b"}]`, &children, "Child")
		require.NoError(t, err)
		assert.Same(t, &children, result)
		assert.Equal(t, []Child{{Name: "seed"}, {Name: "a"}, {Name: "b"}}, children)
	})

	t.Run("map of scalars", func(t *testing.T) {
		counts := map[string]int{}
		_, err := m.MapArray(`{"a": "1", "b": 2.7, "c": null}`, counts, "int")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 0}, counts)
	})

	t.Run("array object is mutated in place", func(t *testing.T) {
		bag := types.NewArrayObject()
		bag.OffsetSet("seed", true)
		result, err := m.MapArray(`{"first-key": 1}`, bag, "")
		require.NoError(t, err)
		assert.Same(t, bag, result)
		assert.Equal(t, []string{"seed", "FirstKey"}, bag.Keys())
	})

	t.Run("unsupported container", func(t *testing.T) {
		_, err := m.MapArray(`[]`, []Child{}, "Child")
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrInvalidArgument)
	})

	t.Run("array object needs qualified element type", func(t *testing.T) {
		_, err := m.MapArray(`[{"name": "a"}]`, types.NewArrayObject(), "Child")
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrInvalidArgument)

		name := mapper.Register[Child](m.Registry())
		bag := types.NewArrayObject()
		_, err = m.MapArray(`[{"name": "a"}]`, bag, name)
		require.NoError(t, err)
		first, ok := bag.OffsetGet("0")
		require.True(t, ok)
		assert.Equal(t, &Child{Name: "a"}, first)
	})
}

func TestMapper_Map_NameResolution(t *testing.T) {
	t.Run("catalogued type on a fresh mapper", func(t *testing.T) {
		r, err := mapper.MapInto[Roster](mapper.New(), `{"items": [{"label": "x"}, {"label": "y"}]}`)
		require.NoError(t, err)
		assert.Equal(t, []any{&Badge{Label: "x"}, &Badge{Label: "y"}}, r.Items)
	})

	t.Run("annotation-only type ignores mapping history", func(t *testing.T) {
		fresh := mapper.New()
		_, err := mapper.MapInto[Orphans](fresh, `{"items": [{"name": "x"}]}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrConstructionFailure)

		warmed := mapper.New()
		k, err := mapper.MapInto[Keeper](warmed, `{"stray": {"name": "k"}}`)
		require.NoError(t, err)
		assert.Equal(t, "k", k.Stray.Name)

		_, err = mapper.MapInto[Orphans](warmed, `{"items": [{"name": "x"}]}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, mapper.ErrConstructionFailure)
	})

	t.Run("registered type", func(t *testing.T) {
		m := mapper.New()
		mapper.Register[Stray](m.Registry())
		o, err := mapper.MapInto[Orphans](m, `{"items": [{"name": "x"}]}`)
		require.NoError(t, err)
		assert.Equal(t, []any{&Stray{Name: "x"}}, o.Items)
	})
}

func TestMapper_Map_NumericRange(t *testing.T) {
	m := mapper.New()

	tests := []struct {
		name    string
		input   string
		want    Narrow
		wantErr bool
	}{
		{name: "in range", input: `{"small": -128, "count": "42", "ratio": 0.5}`, want: Narrow{Small: -128, Count: 42, Ratio: 0.5}},
		{name: "int8 overflow", input: `{"small": 300}`, wantErr: true},
		{name: "negative unsigned", input: `{"count": -1}`, wantErr: true},
		{name: "float32 overflow", input: `{"ratio": 1e39}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := mapper.MapInto[Narrow](m, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, mapper.ErrAssignmentFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *n)
		})
	}
}

func TestMapper_Concurrent(t *testing.T) {
	m := mapper.New()
	var wg sync.WaitGroup
	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := mapper.MapInto[Person](m, fmt.Sprintf(`{"name": "n%d", "age": %d}`, i, i))
			if err != nil {
				errs <- err
				return
			}
			if p.Age != i {
				errs <- fmt.Errorf("expected age %d, got %d", i, p.Age)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
