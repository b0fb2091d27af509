package parser

import "fmt"

type Section int

const (
	SectionInputs Section = iota
	SectionOutputs
	SectionStates
)

var sections = []Section{SectionInputs, SectionOutputs, SectionStates}

func (s Section) Marker() string {
	switch s {
	case SectionInputs:
		return "External inputs"
	case SectionOutputs:
		return "External outputs"
	case SectionStates:
		return "Block states"
	}
	return ""
}

// Tag is the struct-name fragment that closes the section body.
func (s Section) Tag() string {
	switch s {
	case SectionInputs:
		return "ExtU"
	case SectionOutputs:
		return "ExtY"
	case SectionStates:
		return "DW"
	}
	return ""
}

func (s Section) String() string {
	switch s {
	case SectionInputs:
		return "inputs"
	case SectionOutputs:
		return "outputs"
	case SectionStates:
		return "states"
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

// Field is one member of a generated model struct. Size is zero for scalars.
type Field struct {
	Name  string `yaml:"name"`
	CType string `yaml:"type"`
	Size  int    `yaml:"size,omitempty"`
	Line  int    `yaml:"line"`
}

func (f Field) IsArray() bool {
	return f.Size > 0
}

// Len is the number of elements the field occupies; 1 for scalars.
func (f Field) Len() int {
	if f.Size > 0 {
		return f.Size
	}
	return 1
}

type Header struct {
	Model   string    `yaml:"model,omitempty"`
	Inputs  []Field   `yaml:"inputs"`
	Outputs []Field   `yaml:"outputs"`
	States  []Field   `yaml:"states"`
	Skipped []Section `yaml:"-"`
}

func (h *Header) Fields(s Section) []Field {
	switch s {
	case SectionInputs:
		return h.Inputs
	case SectionOutputs:
		return h.Outputs
	case SectionStates:
		return h.States
	}
	return nil
}

func (h *Header) set(s Section, fields []Field) {
	switch s {
	case SectionInputs:
		h.Inputs = fields
	case SectionOutputs:
		h.Outputs = fields
	case SectionStates:
		h.States = fields
	}
}
