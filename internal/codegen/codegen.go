package codegen

import (
	"fmt"
	"go/ast"
	"go/token"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"

	"github.com/noders-team/go-jsonmapper/internal/codegen/astgen"
	"github.com/noders-team/go-jsonmapper/internal/codegen/model"
)

// OutputFileName is the file gen writes into the scanned package. It is left
// out of scans so a rerun regenerates it from the sources alone.
const OutputFileName = "jsonmapper_docs.go"

// GetPackage loads the single package matched by pattern, relative to dir,
// and collects the doc metadata of its structs.
func GetPackage(dir, pattern string) (*model.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles | packages.NeedSyntax,
		Dir:  dir,
		Fset: token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("pattern %s matched %d packages, expected 1", pattern, len(pkgs))
	}

	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		for _, e := range pkg.Errors {
			log.Warn().Msgf("package %s: %s", pkg.PkgPath, e)
		}
		return nil, fmt.Errorf("package %s has errors: %w", pkg.PkgPath, pkg.Errors[0])
	}

	files := make([]*ast.File, 0, len(pkg.Syntax))
	for _, f := range pkg.Syntax {
		if filepath.Base(cfg.Fset.Position(f.Pos()).Filename) == OutputFileName {
			continue
		}
		files = append(files, f)
	}

	result, err := getAST(pkg.Name, pkg.PkgPath, cfg.Fset, files)
	if err != nil {
		return nil, err
	}
	if len(pkg.GoFiles) > 0 {
		result.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	return result, nil
}

func getAST(name, path string, fset *token.FileSet, files []*ast.File) (*model.Package, error) {
	structs, err := astgen.NewCodegenAst(fset, files).GetTemplateStructs()
	if err != nil {
		return nil, err
	}
	return &model.Package{
		Name:    name,
		Path:    path,
		Structs: structs,
	}, nil
}

// Generate renders the MemberDocs and PackageTypes methods of pkg into
// outputDir and returns the written file, or "" when pkg declares no struct.
func Generate(pkg *model.Package, outputDir string) (string, error) {
	if len(pkg.Structs) == 0 {
		log.Info().Msgf("no structs in %s", pkg.Path)
		return "", nil
	}

	code, err := Bind(pkg)
	if err != nil {
		return "", fmt.Errorf("failed to generate Go code: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}
	outputFile := filepath.Join(outputDir, OutputFileName)
	if err := os.WriteFile(outputFile, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file '%s': %w", outputFile, err)
	}
	return outputFile, nil
}
