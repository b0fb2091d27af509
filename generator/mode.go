package generator

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/rtwbind/parser"
)

var ErrUnknownMode = errors.New("unknown generation mode")

// Mode turns a Binding into Go source files, keyed by file name.
type Mode interface {
	Name() string
	Emit(b *Binding) (map[string][]byte, error)
}

const (
	ModeOwned  = "owned"
	ModeGlobal = "global"
)

// Modes lists the supported mode names.
func Modes() []string {
	return []string{ModeOwned, ModeGlobal}
}

func ModeFor(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case ModeOwned, "":
		return OwnedMode{}, nil
	case ModeGlobal:
		return GlobalMode{}, nil
	}
	return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMode, name, strings.Join(Modes(), ", "))
}

type routine struct {
	Var    string
	Symbol string
	Params string
}

type global struct {
	Var    string
	Symbol string
}

type record struct {
	Name    string
	Section parser.Section
	Default string
	Fields  []BoundField
}

type viewSet struct {
	Kind     string
	Prefix   string
	NamesVar string
	Section  parser.Section
	Symbol   string
	Fields   []BoundField
}

type templateData struct {
	*Binding
	Global   bool
	Routines []routine
	Globals  []global
	Records  []record
	Views    []viewSet
}

func pointerParams(n int) string {
	return strings.Repeat(", &ffi.TypePointer", n)
}

// OwnedMode emits a wrapper that owns its inputs, outputs and states and
// hands them to reentrant native routines through a per-call context.
type OwnedMode struct{}

func (OwnedMode) Name() string { return ModeOwned }

func (OwnedMode) Emit(b *Binding) (map[string][]byte, error) {
	data := templateData{
		Binding: b,
		Routines: []routine{
			{Var: "initializeFunc", Symbol: b.InitializeSymbol(), Params: pointerParams(3)},
			{Var: "stepFunc", Symbol: b.StepSymbol(), Params: pointerParams(3)},
			{Var: "terminateFunc", Symbol: b.TerminateSymbol(), Params: pointerParams(1)},
		},
		Records: []record{
			{Name: b.InputsType(), Section: parser.SectionInputs, Default: "DefaultExtU", Fields: b.Inputs},
			{Name: b.OutputsType(), Section: parser.SectionOutputs, Default: "DefaultExtY", Fields: b.Outputs},
			{Name: b.StatesType(), Section: parser.SectionStates, Default: "DefaultDW", Fields: b.States},
		},
	}

	if err := checkScope(data); err != nil {
		return nil, err
	}

	return render(data, "loader.go", "types.go", "model.go")
}

// GlobalMode emits a single-instance controller over the native model's
// process-wide input and output storage, with kind-tagged views per field.
type GlobalMode struct{}

func (GlobalMode) Name() string { return ModeGlobal }

func (GlobalMode) Emit(b *Binding) (map[string][]byte, error) {
	data := templateData{
		Binding: b,
		Global:  true,
		Routines: []routine{
			{Var: "initializeFunc", Symbol: b.InitializeSymbol()},
			{Var: "stepFunc", Symbol: b.StepSymbol()},
			{Var: "terminateFunc", Symbol: b.TerminateSymbol()},
		},
		Records: []record{
			{Name: b.InputsType(), Section: parser.SectionInputs, Default: "DefaultExtU", Fields: b.Inputs},
			{Name: b.OutputsType(), Section: parser.SectionOutputs, Default: "DefaultExtY", Fields: b.Outputs},
		},
		Views: []viewSet{
			{Kind: "InputKind", Prefix: "Input", NamesVar: "inputNames", Section: parser.SectionInputs, Symbol: b.InputsSymbol(), Fields: b.Inputs},
			{Kind: "OutputKind", Prefix: "Output", NamesVar: "outputNames", Section: parser.SectionOutputs, Symbol: b.OutputsSymbol(), Fields: b.Outputs},
		},
	}
	if len(b.Inputs) > 0 {
		data.Globals = append(data.Globals, global{Var: "inputsAddr", Symbol: b.InputsSymbol()})
	}
	if len(b.Outputs) > 0 {
		data.Globals = append(data.Globals, global{Var: "outputsAddr", Symbol: b.OutputsSymbol()})
	}

	if err := errors.Join(checkViews(b), checkScope(data)); err != nil {
		return nil, err
	}

	return render(data, "loader.go", "types.go", "views.go", "controller.go")
}

// checkViews rejects fields the float64 views cannot alias.
func checkViews(b *Binding) error {
	var errs []error

	check := func(s parser.Section, fields []BoundField) {
		for _, f := range fields {
			if f.GoType != "float64" {
				errs = append(errs, &FieldError{Section: s, Field: f.Field, Err: fmt.Errorf("%w in %s mode: %s", ErrUnsupportedType, ModeGlobal, f.CType)})
			}
		}
	}
	check(parser.SectionInputs, b.Inputs)
	check(parser.SectionOutputs, b.Outputs)

	return errors.Join(errs...)
}

func render(data templateData, names ...string) (map[string][]byte, error) {
	files := make(map[string][]byte, len(names))

	for _, name := range names {
		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", name, err)
		}
		files[name] = buf.Bytes()
	}

	return files, nil
}
