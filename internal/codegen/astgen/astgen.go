package astgen

import (
	"go/ast"
	"go/token"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/noders-team/go-jsonmapper/internal/codegen/model"
)

const (
	docsMethod   = "MemberDocs"
	typesMethod  = "PackageTypes"
	setterPrefix = "Set"
)

type AstGen interface {
	GetTemplateStructs() (map[string]*model.TmplStruct, error)
}

type codeGenAst struct {
	fset  *token.FileSet
	files []*ast.File
}

func NewCodegenAst(fset *token.FileSet, files []*ast.File) AstGen {
	return &codeGenAst{fset: fset, files: files}
}

// GetTemplateStructs collects every struct of the files with the doc comments
// holding annotations of its fields and single-argument Set* methods. Generic
// structs are skipped since a method on them needs type parameters.
func (c *codeGenAst) GetTemplateStructs() (map[string]*model.TmplStruct, error) {
	structs := make(map[string]*model.TmplStruct)

	for _, file := range c.files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					continue
				}
				if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
					log.Debug().Msgf("skipping generic struct %s", ts.Name.Name)
					continue
				}
				tmpl := c.structOf(structs, ts.Name.Name)
				tmpl.Location = c.fset.Position(ts.Pos()).String()
				c.collectFields(tmpl, st)
			}
		}
	}

	for _, file := range c.files {
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) != 1 {
				continue
			}
			recv := receiverName(fn.Recv.List[0].Type)
			tmpl, ok := structs[recv]
			if !ok {
				continue
			}
			switch {
			case fn.Name.Name == docsMethod:
				tmpl.HasDocsMethod = true
			case fn.Name.Name == typesMethod:
				tmpl.HasTypesMethod = true
			case strings.HasPrefix(fn.Name.Name, setterPrefix) && paramCount(fn.Type) == 1:
				if doc := annotated(fn.Doc); doc != "" {
					tmpl.Members[fn.Name.Name] = doc
				}
			}
		}
	}

	return structs, nil
}

func (c *codeGenAst) structOf(structs map[string]*model.TmplStruct, name string) *model.TmplStruct {
	if s, ok := structs[name]; ok {
		return s
	}
	s := &model.TmplStruct{Name: name, Members: make(map[string]string)}
	structs[name] = s
	return s
}

func (c *codeGenAst) collectFields(tmpl *model.TmplStruct, st *ast.StructType) {
	for _, field := range st.Fields.List {
		doc := annotated(field.Doc)
		if doc == "" {
			doc = annotated(field.Comment)
		}
		if doc == "" {
			continue
		}
		for _, name := range field.Names {
			tmpl.Members[name.Name] = doc
		}
	}
}

// annotated returns the comment text when it holds at least one annotation.
func annotated(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	text := strings.TrimSpace(cg.Text())
	if !strings.Contains(text, "@") {
		return ""
	}
	return text
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

func paramCount(ft *ast.FuncType) int {
	n := 0
	for _, p := range ft.Params.List {
		if len(p.Names) == 0 {
			n++
			continue
		}
		n += len(p.Names)
	}
	return n
}
