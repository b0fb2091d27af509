package generator

import (
	"fmt"
	"sort"

	"golang.org/x/tools/imports"

	"github.com/ardanlabs/rtwbind/parser"
)

var formatOptions = &imports.Options{
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
	FormatOnly: true,
}

type Generator struct {
	binding *Binding
	mode    Mode
}

func New(binding *Binding, mode Mode) *Generator {
	if mode == nil {
		mode = OwnedMode{}
	}
	return &Generator{
		binding: binding,
		mode:    mode,
	}
}

// Generate returns the formatted source of every file the mode emits. No
// file is returned unless all of them rendered and formatted.
func (g *Generator) Generate() (map[string]string, error) {
	raw, err := g.mode.Emit(g.binding)
	if err != nil {
		return nil, fmt.Errorf("generating %s mode: %w", g.mode.Name(), err)
	}

	files := make(map[string]string, len(raw))
	for _, name := range FileNames(raw) {
		src, err := imports.Process(name, raw[name], formatOptions)
		if err != nil {
			return nil, fmt.Errorf("formatting %s: %w", name, err)
		}
		files[name] = string(src)
	}

	return files, nil
}

// Generate binds h to model and runs the named mode over it.
func Generate(model string, h *parser.Header, opts BindingOptions, modeName string) (map[string]string, error) {
	mode, err := ModeFor(modeName)
	if err != nil {
		return nil, err
	}

	b, err := NewBinding(model, h, opts)
	if err != nil {
		return nil, err
	}

	return New(b, mode).Generate()
}

// FileNames returns the keys of files in sorted order.
func FileNames[V any](files map[string]V) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
