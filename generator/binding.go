package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardanlabs/rtwbind/parser"
)

var (
	ErrInvalidModel      = errors.New("invalid model identifier")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrCollision         = errors.New("identifier collision")
	ErrUnsupportedType   = errors.New("unsupported field type")
)

var cIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// goTypes maps the scalar type tokens of the model code generator to Go
// types of identical size and alignment.
var goTypes = map[string]string{
	"real_T":    "float64",
	"real64_T":  "float64",
	"time_T":    "float64",
	"double":    "float64",
	"real32_T":  "float32",
	"float":     "float32",
	"int8_T":    "int8",
	"uint8_T":   "uint8",
	"int16_T":   "int16",
	"uint16_T":  "uint16",
	"int32_T":   "int32",
	"uint32_T":  "uint32",
	"int64_T":   "int64",
	"uint64_T":  "uint64",
	"int_T":     "int32",
	"uint_T":    "uint32",
	"boolean_T": "uint8",
	"char_T":    "int8",
	"uchar_T":   "uint8",
	"byte_T":    "uint8",
}

// reserved are generated package-level names the wrapper type and its
// alias may never take, in any mode.
var reserved = map[string]bool{
	"Load":        true,
	"Close":       true,
	"Input":       true,
	"Output":      true,
	"InputKind":   true,
	"OutputKind":  true,
	"DefaultExtU": true,
	"DefaultExtY": true,
	"DefaultDW":   true,
}

// FieldError reports a field that cannot be bound.
type FieldError struct {
	Section parser.Section
	Field   parser.Field
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s field %q (line %d): %v", e.Section, e.Field.Name, e.Field.Line, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CollisionError names two source fields whose Go names are equal.
type CollisionError struct {
	Section parser.Section
	GoName  string
	First   parser.Field
	Second  parser.Field
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s fields %q (line %d) and %q (line %d) both map to %s",
		e.Section, e.First.Name, e.First.Line, e.Second.Name, e.Second.Line, e.GoName)
}

func (e *CollisionError) Unwrap() error {
	return ErrCollision
}

type BoundField struct {
	parser.Field
	GoName string
	GoType string
}

// TypeExpr is the Go type of the field, [n]T for arrays.
func (f BoundField) TypeExpr() string {
	if f.IsArray() {
		return fmt.Sprintf("[%d]%s", f.Size, f.GoType)
	}
	return f.GoType
}

func (f BoundField) ZeroExpr() string {
	switch {
	case f.IsArray():
		return f.TypeExpr() + "{}"
	case f.GoType == "float64" || f.GoType == "float32":
		return "0.0"
	}
	return "0"
}

// ViewExpr is a []float64 expression aliasing the field of the record
// pointed to by recv.
func (f BoundField) ViewExpr(recv string) string {
	if f.IsArray() {
		return fmt.Sprintf("%s.%s[:]", recv, f.GoName)
	}
	return fmt.Sprintf("unsafe.Slice(&%s.%s, 1)", recv, f.GoName)
}

type BindingOptions struct {
	// Package is the Go package name; defaults to the lower-cased model.
	Package string
	// Lib is the shared library base name; defaults to the model.
	Lib string
	// TypeName overrides the Go name of the wrapper type.
	TypeName string
	// Alias adds a type alias for the wrapper.
	Alias string
}

// Binding is the model identifier plus its three bound field lists.
type Binding struct {
	Model    string
	TypeName string
	Package  string
	Lib      string
	Alias    string
	Inputs   []BoundField
	Outputs  []BoundField
	States   []BoundField
}

// NewBinding validates the model identifier and every field, and derives
// the Go names. All problems are reported together.
func NewBinding(model string, h *parser.Header, opts BindingOptions) (*Binding, error) {
	if !cIdentRe.MatchString(model) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModel, model)
	}

	b := Binding{
		Model:    model,
		TypeName: opts.TypeName,
		Package:  opts.Package,
		Lib:      opts.Lib,
		Alias:    opts.Alias,
	}

	var errs []error

	if b.TypeName == "" {
		b.TypeName = GoName(model)
	}
	if err := checkTypeName(b.TypeName); err != nil {
		errs = append(errs, fmt.Errorf("type name: %w", err))
	}
	if b.Alias != "" {
		if err := checkTypeName(b.Alias); err != nil {
			errs = append(errs, fmt.Errorf("alias: %w", err))
		} else if b.Alias == b.TypeName {
			errs = append(errs, fmt.Errorf("alias: %w: %q equals the type name", ErrInvalidIdentifier, b.Alias))
		}
	}

	if b.Package == "" {
		b.Package = strings.ToLower(GoName(model))
	}
	if !cIdentRe.MatchString(b.Package) || strings.ToLower(b.Package) != b.Package {
		errs = append(errs, fmt.Errorf("package: %w: %q", ErrInvalidIdentifier, b.Package))
	}

	if b.Lib == "" {
		b.Lib = model
	}

	var err error
	if b.Inputs, err = bindFields(parser.SectionInputs, h.Inputs); err != nil {
		errs = append(errs, err)
	}
	if b.Outputs, err = bindFields(parser.SectionOutputs, h.Outputs); err != nil {
		errs = append(errs, err)
	}
	if b.States, err = bindFields(parser.SectionStates, h.States); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &b, nil
}

func bindFields(s parser.Section, fields []parser.Field) ([]BoundField, error) {
	var errs []error

	bound := make([]BoundField, 0, len(fields))
	seen := make(map[string]parser.Field, len(fields))

	for _, f := range fields {
		goName := GoName(f.Name)
		if err := checkExported(goName); err != nil {
			errs = append(errs, &FieldError{Section: s, Field: f, Err: ErrInvalidIdentifier})
			continue
		}
		if prev, ok := seen[goName]; ok {
			errs = append(errs, &CollisionError{Section: s, GoName: goName, First: prev, Second: f})
			continue
		}
		seen[goName] = f

		goType, ok := goTypes[f.CType]
		if !ok {
			errs = append(errs, &FieldError{Section: s, Field: f, Err: fmt.Errorf("%w: %s", ErrUnsupportedType, f.CType)})
			continue
		}

		bound = append(bound, BoundField{
			Field:  f,
			GoName: goName,
			GoType: goType,
		})
	}

	return bound, errors.Join(errs...)
}

// GoName derives the exported Go identifier for a C identifier: split on
// underscores, drop empty parts, upper-case the first letter of each part
// and keep the rest unchanged. "pos_x" becomes "PosX", "_cnt" becomes "Cnt".
func GoName(ident string) string {
	var b strings.Builder
	for _, part := range strings.Split(ident, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(part[size:])
	}
	return b.String()
}

func checkExported(name string) error {
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || !unicode.IsUpper(r) || !cIdentRe.MatchString(name) {
		return fmt.Errorf("%w: %q is not an exported Go identifier", ErrInvalidIdentifier, name)
	}
	return nil
}

func checkTypeName(name string) error {
	if err := checkExported(name); err != nil {
		return err
	}
	if reserved[name] {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidIdentifier, name)
	}
	return nil
}

func (b *Binding) InputsType() string  { return "ExtU_" + b.Model + "_T" }
func (b *Binding) OutputsType() string { return "ExtY_" + b.Model + "_T" }
func (b *Binding) StatesType() string  { return "DW_" + b.Model + "_T" }
func (b *Binding) ContextType() string { return "RT_MODEL_" + b.Model + "_T" }

func (b *Binding) InitializeSymbol() string { return b.Model + "_initialize" }
func (b *Binding) StepSymbol() string       { return b.Model + "_step" }
func (b *Binding) TerminateSymbol() string  { return b.Model + "_terminate" }

// InputsSymbol and OutputsSymbol name the process-wide native storage used
// by non-reusable model code.
func (b *Binding) InputsSymbol() string  { return b.Model + "_U" }
func (b *Binding) OutputsSymbol() string { return b.Model + "_Y" }
