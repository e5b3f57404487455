package harness

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/isdmx/questbox/protocol"
)

//go:embed program.py.tmpl
var programSource string

var programTemplate = template.Must(template.New("program").
	Funcs(template.FuncMap{"py": pyString}).
	Parse(programSource))

// Program is a synthesized guest program and the sentinels it reports with.
type Program struct {
	Source    string
	Sentinels protocol.Sentinels
}

type programData struct {
	Context        string
	Source         string
	Sentinels      protocol.Sentinels
	Primitives     []Primitive
	ResultVariable string
}

// BuildProgram synthesizes the guest program for code with ctx bound as
// top-level variables of the student's namespace.
func BuildProgram(code string, ctx map[string]any, sentinels protocol.Sentinels) (Program, error) {
	vars, err := contextDict(ctx)
	if err != nil {
		return Program{}, err
	}

	var b strings.Builder
	err = programTemplate.Execute(&b, programData{
		Context:        vars,
		Source:         pyString(code),
		Sentinels:      sentinels,
		Primitives:     Primitives,
		ResultVariable: ResultVariable,
	})
	if err != nil {
		return Program{}, fmt.Errorf("render program: %w", err)
	}

	return Program{Source: b.String(), Sentinels: sentinels}, nil
}
