package typeexpr

import "strings"

const (
	ScalarString = "string"
	ScalarBool   = "bool"
	ScalarInt    = "int"
	ScalarFloat  = "float"
	ScalarArray  = "array"
	ScalarObject = "object"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindMixed
	KindScalar
	KindNamed
	KindSequence
	KindContainer
)

func (k Kind) String() string {
	return [...]string{"empty", "mixed", "scalar", "named", "sequence", "container"}[k]
}

// Expr is a parsed declared type.
//
//	KindScalar     Name is the canonical scalar keyword
//	KindNamed      Name is the type name as written
//	KindSequence   Elem is the element type of "Elem[]"
//	KindContainer  Name is the container and Elem the element of "Name[Elem]"
type Expr struct {
	Kind     Kind
	Name     string
	Elem     string
	Nullable bool
	Raw      string
}

// Parse builds the expression of a declared type string. An empty string (or a
// bare "null") parses as KindEmpty; callers distinguish absent types themselves.
func Parse(t string) Expr {
	e := Expr{Raw: t, Nullable: IsNullable(t)}
	if e.Nullable {
		t = RemoveNullable(t)
	}
	t = strings.TrimSpace(t)

	if t == "" {
		e.Kind = KindEmpty
		return e
	}
	if strings.EqualFold(t, "mixed") {
		e.Kind = KindMixed
		return e
	}
	if scalar, ok := canonicalScalar(t); ok {
		e.Kind = KindScalar
		e.Name = scalar
		return e
	}
	if elem, ok := ArrayElem(t); ok {
		e.Kind = KindSequence
		e.Elem = elem
		return e
	}
	if container, elem, ok := ContainerParts(t); ok {
		e.Kind = KindContainer
		e.Name = container
		e.Elem = elem
		return e
	}
	e.Kind = KindNamed
	e.Name = t
	return e
}

// Stripped returns the declared type without its null alternative.
func (e Expr) Stripped() string {
	return strings.TrimSpace(RemoveNullable(e.Raw))
}
