package codegen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"strconv"
	"text/template"

	"github.com/noders-team/go-jsonmapper/internal/codegen/model"
)

type tmplData struct {
	Package    string
	Structs    map[string]*model.TmplStruct
	Types      []string
	Catalogued []string
}

//go:embed docs.go.tpl
var tmplSource string

// Bind renders the MemberDocs methods of the annotated structs and the
// PackageTypes methods listing every struct of pkg.
func Bind(pkg *model.Package) (string, error) {
	data := &tmplData{
		Package:    pkg.Name,
		Structs:    pkg.Documented(),
		Types:      pkg.TypeNames(),
		Catalogued: pkg.Catalogued(),
	}
	buffer := new(bytes.Buffer)

	funcs := map[string]interface{}{
		"quote": strconv.Quote,
	}
	tmpl := template.Must(template.New("").Funcs(funcs).Parse(tmplSource))
	if err := tmpl.Execute(buffer, data); err != nil {
		return "", err
	}
	// Pass the code through gofmt to clean it up
	code, err := format.Source(buffer.Bytes())
	if err != nil {
		return "", fmt.Errorf("%v\n%s", err, buffer)
	}
	return string(code), nil
}
