// Package annotation extracts @name value metadata from documentation text.
package annotation

import (
	"regexp"
	"strings"
)

var annotationRe = regexp.MustCompile(`(?m)@([A-Za-z_-]+)(?:[ \t]+(.*?))?[ \t]*\r?$`)

// Annotations maps an annotation name to its raw values in declaration order.
type Annotations map[string][]string

// Parse reads every "@name value" occurrence of doc. Block comment delimiters
// are tolerated so both go/ast comment text and raw /** ... */ blocks work.
func Parse(doc string) Annotations {
	doc = strings.TrimSpace(doc)
	doc = strings.TrimPrefix(doc, "/**")
	doc = strings.TrimSuffix(doc, "*/")

	annotations := make(Annotations)
	for _, match := range annotationRe.FindAllStringSubmatch(doc, -1) {
		annotations[match[1]] = append(annotations[match[1]], match[2])
	}
	return annotations
}

func (a Annotations) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// First returns the first value recorded for name.
func (a Annotations) First(name string) (string, bool) {
	values, ok := a[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// DeclaredType returns the type token of the first value of name, supporting
// the "@var type description" form. The type is empty when the annotation
// carries no value; ok is false when the annotation is absent.
func (a Annotations) DeclaredType(name string) (string, bool) {
	value, ok := a.First(name)
	if !ok {
		return "", false
	}
	typ, _, _ := strings.Cut(strings.TrimSpace(value), " ")
	return typ, true
}
