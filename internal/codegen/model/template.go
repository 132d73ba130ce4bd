package model

import "sort"

// TmplStruct is a struct of the scanned package that carries doc metadata.
type TmplStruct struct {
	Name string
	// Members maps Go member names (fields and Set* methods) to their doc text.
	Members map[string]string
	// HasDocsMethod is set when the struct already declares MemberDocs by hand.
	HasDocsMethod bool
	// HasTypesMethod is set when the struct already declares PackageTypes by hand.
	HasTypesMethod bool
	Location      string
}

type Package struct {
	Name    string
	Path    string
	Dir     string
	Structs map[string]*TmplStruct
}

// Documented returns the structs a MemberDocs method should be generated for.
func (p *Package) Documented() map[string]*TmplStruct {
	out := make(map[string]*TmplStruct)
	for name, s := range p.Structs {
		if s.HasDocsMethod || len(s.Members) == 0 {
			continue
		}
		out[name] = s
	}
	return out
}

// TypeNames returns the sorted names of all scanned structs.
func (p *Package) TypeNames() []string {
	return sortedNames(p.Structs, func(*TmplStruct) bool { return true })
}

// Catalogued returns the sorted names of the structs a PackageTypes method
// should be generated for.
func (p *Package) Catalogued() []string {
	return sortedNames(p.Structs, func(s *TmplStruct) bool { return !s.HasTypesMethod })
}

func sortedNames(structs map[string]*TmplStruct, keep func(*TmplStruct) bool) []string {
	names := make([]string, 0, len(structs))
	for name, s := range structs {
		if keep(s) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
