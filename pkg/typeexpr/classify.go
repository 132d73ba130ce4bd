// Package typeexpr classifies declared type strings such as "int", "Foo|null",
// "Foo[]" or "Collection[Foo]".
package typeexpr

import (
	"strings"

	"github.com/noders-team/go-jsonmapper/pkg/types"
)

// IsSimple reports whether t is one of the scalar keywords.
func IsSimple(t string) bool {
	_, ok := canonicalScalar(t)
	return ok
}

func canonicalScalar(t string) (string, bool) {
	switch t {
	case "string":
		return ScalarString, true
	case "bool", "boolean":
		return ScalarBool, true
	case "int", "integer":
		return ScalarInt, true
	case "float", "double":
		return ScalarFloat, true
	case "array":
		return ScalarArray, true
	case "object":
		return ScalarObject, true
	}
	return "", false
}

// IsFlat reports whether a runtime kind is not nested.
func IsFlat(k types.Kind) bool {
	switch k {
	case types.KindNull, types.KindBool, types.KindNumber, types.KindString:
		return true
	}
	return false
}

// IsNullable reports whether t has a null alternative.
func IsNullable(t string) bool {
	return strings.Contains(strings.ToLower("|"+t+"|"), "|null|")
}

// RemoveNullable strips the null alternatives of t and keeps the others in order.
func RemoveNullable(t string) string {
	parts := strings.Split(t, "|")
	kept := parts[:0]
	for _, p := range parts {
		if strings.EqualFold(p, "null") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "|")
}

// ArrayElem returns T for a "T[]" type.
func ArrayElem(t string) (string, bool) {
	if !strings.HasSuffix(t, "[]") {
		return "", false
	}
	return t[:len(t)-2], true
}

// ContainerParts splits "C[T]" into its container C and element T.
func ContainerParts(t string) (container, elem string, ok bool) {
	if !strings.HasSuffix(t, "]") || strings.HasSuffix(t, "[]") {
		return "", "", false
	}
	container, elem, ok = strings.Cut(t[:len(t)-1], "[")
	if !ok {
		return "", "", false
	}
	return container, elem, true
}

// IsQualified reports whether name already carries a package path.
func IsQualified(name string) bool {
	return strings.HasPrefix(name, `\`) || strings.Contains(name, ".")
}

// Qualify resolves a bare type name against pkg. Qualified names are returned
// without a leading backslash.
func Qualify(name, pkg string) string {
	if name == "" {
		return name
	}
	if IsQualified(name) {
		return strings.TrimPrefix(name, `\`)
	}
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// ShortName returns the part of a qualified name after the last dot.
func ShortName(name string) string {
	name = strings.TrimPrefix(name, `\`)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
