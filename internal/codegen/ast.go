package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/noders-team/go-jsonmapper/internal/codegen/model"
)

// GetPackageFromSource scans a single Go source file. src may be nil, in which
// case the file is read from filename.
func GetPackageFromSource(filename string, src any) (*model.Package, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return getAST(file.Name.Name, file.Name.Name, fset, []*ast.File{file})
}
