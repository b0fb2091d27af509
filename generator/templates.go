package generator

import "text/template"

var templates = template.Must(template.New("rtwbind").Parse(loaderTmpl + typesTmpl + modelTmpl + viewsTmpl + controllerTmpl))

const loaderTmpl = `{{define "loader.go"}}// Code generated by rtwbind for model {{.Model}}. DO NOT EDIT.

package {{.Package}}

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/jupiterrider/ffi"
)

var lib ffi.Lib

var (
{{- range .Routines}}
	{{.Var}} ffi.Fun
{{- end}}
)
{{- if .Globals}}

var (
{{- range .Globals}}
	{{.Var}} uintptr
{{- end}}
)
{{- end}}

// Load opens the {{.Lib}} shared library in dir and binds the {{.Model}}
// entry points. It must succeed before any wrapper is constructed.
func Load(dir string) error {
	var err error
	lib, err = ffi.Load(getLibraryPath(dir))
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
{{range .Routines}}
	if {{.Var}}, err = lib.Prep("{{.Symbol}}", &ffi.TypeVoid{{.Params}}); err != nil {
		return fmt.Errorf("{{.Symbol}}: %w", err)
	}
{{end}}
{{- range .Globals}}
	if {{.Var}}, err = lib.Get("{{.Symbol}}"); err != nil {
		return fmt.Errorf("{{.Symbol}}: %w", err)
	}
{{end}}
	return nil
}

// Close unloads the shared library.
func Close() error {
	return lib.Close()
}

func getLibraryPath(basePath string) string {
	var filename string
	switch runtime.GOOS {
	case "linux", "freebsd":
		filename = "lib{{.Lib}}.so"
	case "darwin":
		filename = "lib{{.Lib}}.dylib"
	case "windows":
		filename = "{{.Lib}}.dll"
	default:
		filename = "lib{{.Lib}}.so"
	}
	return filepath.Join(basePath, filename)
}
{{end}}`

const typesTmpl = `{{define "record"}}
// {{.Name}} mirrors the native {{.Section}} block. Field order is the
// native declaration order.
type {{.Name}} struct {
{{- range .Fields}}
	{{.GoName}} {{.TypeExpr}} // {{.Name}}
{{- end}}
}

// {{.Default}} returns {{.Name}} with every field zeroed.
func {{.Default}}() {{.Name}} {
	return {{.Name}}{
{{- range .Fields}}
		{{.GoName}}: {{.ZeroExpr}},
{{- end}}
	}
}
{{end}}

{{- define "types.go"}}// Code generated by rtwbind for model {{.Model}}. DO NOT EDIT.

package {{.Package}}
{{range .Records}}{{template "record" .}}{{end}}
{{- if not .Global}}
// {{.ContextType}} is the native model context. It is built for a single
// native call and never outlives it.
type {{.ContextType}} struct {
	dwork *{{.StatesType}}
}
{{- end}}
{{end}}`

const modelTmpl = `{{define "model.go"}}// Code generated by rtwbind for model {{.Model}}. DO NOT EDIT.

package {{.Package}}

import (
	"unsafe"

	"github.com/ardanlabs/rtwbind/rtm"
	"github.com/jupiterrider/ffi"
)

// {{.TypeName}} wraps the {{.Model}} model. Inputs and Outputs are read and
// written in place by the native routines; the block states stay private.
// Each value owns its data, so several may be driven independently.
type {{.TypeName}} struct {
	Inputs  {{.InputsType}}
	Outputs {{.OutputsType}}
	states  {{.StatesType}}
}
{{- if .Alias}}

type {{.Alias}} = {{.TypeName}}
{{- end}}

// New{{.TypeName}} returns a zeroed model that has been through
// {{.InitializeSymbol}}.
func New{{.TypeName}}() *{{.TypeName}} {
	m := &{{.TypeName}}{
		Inputs:  DefaultExtU(),
		Outputs: DefaultExtY(),
		states:  DefaultDW(),
	}
	m.call(initializeFunc, true)
	return m
}

// Step runs {{.StepSymbol}} once.
func (m *{{.TypeName}}) Step() {
	m.call(stepFunc, true)
}

// Terminate runs {{.TerminateSymbol}}.
func (m *{{.TypeName}}) Terminate() {
	m.call(terminateFunc, false)
}

func (m *{{.TypeName}}) call(fn ffi.Fun, withIO bool) {
	rtm.Borrow(&{{.ContextType}}{dwork: &m.states}, func(ctx *{{.ContextType}}) {
		if !withIO {
			fn.Call(nil, unsafe.Pointer(&ctx))
			return
		}
		inputs, outputs := &m.Inputs, &m.Outputs
		fn.Call(nil, unsafe.Pointer(&ctx), unsafe.Pointer(&inputs), unsafe.Pointer(&outputs))
	})
}
{{end}}`

const viewsTmpl = `{{define "kind"}}
// {{.Kind}} enumerates the {{.Section}} in declaration order.
type {{.Kind}} int

const (
{{- range $i, $f := .Fields}}
	{{$.Prefix}}{{$f.GoName}}{{if eq $i 0}} {{$.Kind}} = iota{{end}}
{{- end}}
)

var {{.NamesVar}} = [...]string{
{{- range .Fields}}
	"{{.Name}}",
{{- end}}
}

func (k {{.Kind}}) String() string {
	if k < 0 || int(k) >= len({{.NamesVar}}) {
		return fmt.Sprintf("{{.Kind}}(%d)", int(k))
	}
	return {{.NamesVar}}[k]
}

// {{.Prefix}} is a view over one field of {{.Symbol}}. Indexing past the
// field's declared length panics.
type {{.Prefix}} = rtm.View[{{.Kind}}]
{{end}}

{{- define "views.go"}}// Code generated by rtwbind for model {{.Model}}. DO NOT EDIT.

package {{.Package}}

import (
	"fmt"

	"github.com/ardanlabs/rtwbind/rtm"
)
{{range .Views}}{{template "kind" .}}{{end}}
{{- end}}`

const controllerTmpl = `{{define "controller.go"}}// Code generated by rtwbind for model {{.Model}}. DO NOT EDIT.

package {{.Package}}

import (
	"fmt"
	"iter"
{{- if or .Inputs .Outputs}}
	"unsafe"
{{- end}}

	"github.com/ardanlabs/rtwbind/rtm"
)

var slot = rtm.NewSlot("{{.Model}}")
{{range $v := .Views}}
// {{$.TypeName}}{{$v.Prefix}}s holds one view per field of {{$v.Symbol}}.
type {{$.TypeName}}{{$v.Prefix}}s struct {
{{- range $v.Fields}}
	{{.GoName}} {{$v.Prefix}}
{{- end}}
}
{{end}}
// {{.TypeName}} drives the {{.Model}} model through its process-wide native
// storage. Only one may be live at a time; Close must be called before the
// next one is constructed.
type {{.TypeName}} struct {
	Inputs  {{.TypeName}}Inputs
	Outputs {{.TypeName}}Outputs
	lease   *rtm.Lease
}
{{- if .Alias}}

type {{.Alias}} = {{.TypeName}}
{{- end}}

// New{{.TypeName}} binds the views to {{.InputsSymbol}} and {{.OutputsSymbol}} and
// runs {{.InitializeSymbol}}. It fails if another {{.TypeName}} is still live.
func New{{.TypeName}}() (*{{.TypeName}}, error) {
	lease, err := slot.Acquire()
	if err != nil {
		return nil, err
	}
{{- if .Inputs}}
	u := (*{{.InputsType}})(unsafe.Pointer(inputsAddr))
{{- end}}
{{- if .Outputs}}
	y := (*{{.OutputsType}})(unsafe.Pointer(outputsAddr))
{{- end}}

	c := {{.TypeName}}{
		Inputs: {{.TypeName}}Inputs{
{{- range .Inputs}}
			{{.GoName}}: rtm.NewView(Input{{.GoName}}, {{.ViewExpr "u"}}),
{{- end}}
		},
		Outputs: {{.TypeName}}Outputs{
{{- range .Outputs}}
			{{.GoName}}: rtm.NewView(Output{{.GoName}}, {{.ViewExpr "y"}}),
{{- end}}
		},
		lease: lease,
	}
	initializeFunc.Call(nil)

	return &c, nil
}

// Run constructs a {{.TypeName}}, hands it to fn and closes it afterwards,
// also when fn panics.
func Run{{.TypeName}}(fn func(*{{.TypeName}}) error) error {
	c, err := New{{.TypeName}}()
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(c)
}

// Input returns the view bound to k.
func (c *{{.TypeName}}) Input(k InputKind) Input {
	switch k {
{{- range .Inputs}}
	case Input{{.GoName}}:
		return c.Inputs.{{.GoName}}
{{- end}}
	}
	panic(fmt.Sprintf("{{.Model}}: unknown input %v", k))
}

// Output returns the view bound to k.
func (c *{{.TypeName}}) Output(k OutputKind) Output {
	switch k {
{{- range .Outputs}}
	case Output{{.GoName}}:
		return c.Outputs.{{.GoName}}
{{- end}}
	}
	panic(fmt.Sprintf("{{.Model}}: unknown output %v", k))
}

// Step runs {{.StepSymbol}} once.
func (c *{{.TypeName}}) Step() {
	stepFunc.Call(nil)
}

// Steps returns an endless sequence; each advance runs {{.StepSymbol}}.
// Break out of the range loop to stop.
func (c *{{.TypeName}}) Steps() iter.Seq[struct{}] {
	return rtm.Steps(c.Step)
}

// Close runs {{.TerminateSymbol}} and frees the native storage. Only the first
// call has any effect.
func (c *{{.TypeName}}) Close() error {
	c.lease.Release(func() {
		terminateFunc.Call(nil)
	})
	return nil
}
{{end}}`
