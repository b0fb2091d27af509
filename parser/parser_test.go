package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "testdata", "ctrl.h"))
	require.NoError(t, err)
	return string(data)
}

func TestParseFixture(t *testing.T) {
	h, err := Parse(readFixture(t), WithStrict(true))
	require.NoError(t, err)

	assert.Equal(t, "ctrl", h.Model)
	assert.Empty(t, h.Skipped)

	want := &Header{
		Model: "ctrl",
		Inputs: []Field{
			{Name: "position", CType: "real_T", Size: 3, Line: 36},
			{Name: "velocity", CType: "real_T", Size: 3, Line: 37},
			{Name: "gain", CType: "real_T", Line: 38},
		},
		Outputs: []Field{
			{Name: "torque", CType: "real_T", Line: 43},
			{Name: "error", CType: "real_T", Size: 3, Line: 44},
		},
		States: []Field{
			{Name: "Integrator_DSTATE", CType: "real_T", Size: 3, Line: 29},
			{Name: "UnitDelay_DSTATE", CType: "real_T", Line: 30},
			{Name: "Counter_count", CType: "int32_T", Line: 31},
		},
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestParseArrayInput(t *testing.T) {
	input := `/* External inputs (root inport signals with default storage) */
typedef struct {
  real_T position[3];
} ExtU_m_T;
`
	h, err := Parse(input)
	require.NoError(t, err)

	require.Len(t, h.Inputs, 1)
	assert.Equal(t, "position", h.Inputs[0].Name)
	assert.Equal(t, 3, h.Inputs[0].Size)
	assert.Equal(t, 3, h.Inputs[0].Len())
	assert.True(t, h.Inputs[0].IsArray())
	assert.Empty(t, h.Outputs)
	assert.Empty(t, h.States)
}

func TestParseScalarOutput(t *testing.T) {
	input := `/* External outputs */
typedef struct {
  real_T torque;
} ExtY_m_T;
`
	h, err := Parse(input)
	require.NoError(t, err)

	require.Len(t, h.Outputs, 1)
	assert.Equal(t, "torque", h.Outputs[0].Name)
	assert.Equal(t, 0, h.Outputs[0].Size)
	assert.Equal(t, 1, h.Outputs[0].Len())
	assert.False(t, h.Outputs[0].IsArray())
}

func TestParseNoSections(t *testing.T) {
	h, err := Parse("#include \"rtwtypes.h\"\nextern void m_step(void);\n", WithStrict(true))
	require.NoError(t, err)

	assert.Empty(t, h.Inputs)
	assert.Empty(t, h.Outputs)
	assert.Empty(t, h.States)
	assert.Empty(t, h.Model)
}

func TestParseFieldCountAndOrder(t *testing.T) {
	names := []string{"zeta", "alpha", "mid_value", "b", "a"}

	var body strings.Builder
	body.WriteString("/* Block states */\ntypedef struct {\n")
	for i, n := range names {
		if i%2 == 0 {
			body.WriteString("  real_T " + n + "[2];\n")
		} else {
			body.WriteString("  real_T " + n + ";\n")
		}
	}
	body.WriteString("} DW_m_T;\n")

	h, err := Parse(body.String())
	require.NoError(t, err)

	require.Len(t, h.States, len(names))
	for i, f := range h.States {
		assert.Equal(t, names[i], f.Name)
	}
}

func TestParseLenientIgnoresUnknownLines(t *testing.T) {
	input := `/* Block states */
typedef struct {
  void *Scope_PWORK[4];
  real_T UnitDelay_DSTATE;
  struct {
    int_T IcNeedsLoading;
  } Integrator_IWORK;
} DW_m_T;
`
	h, err := Parse(input)
	require.NoError(t, err)

	// The nested struct's closing line carries no tag, so its member is kept.
	want := []Field{
		{Name: "UnitDelay_DSTATE", CType: "real_T", Line: 4},
		{Name: "IcNeedsLoading", CType: "int_T", Line: 6},
	}
	assert.Equal(t, want, h.States)
}

func TestParseStrictRejectsUnknownLines(t *testing.T) {
	input := `/* Block states */
typedef struct {
  real_T ok;
  void *Scope_PWORK[4];
} DW_m_T;
`
	_, err := Parse(input, WithStrict(true))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldSyntax))

	var lerr *LineError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, 4, lerr.Line)
	assert.Equal(t, SectionStates, lerr.Section)
	assert.Equal(t, "void *Scope_PWORK[4];", lerr.Text)
}

func TestParseStrictSkipsCommentsAndBlanks(t *testing.T) {
	input := `/* External inputs */
typedef struct {

  /* first group */
  real_T a[2];
  // second group
  real_T b;
} ExtU_m_T;
`
	h, err := Parse(input, WithStrict(true))
	require.NoError(t, err)
	assert.Len(t, h.Inputs, 2)
}

func TestParseZeroSizeArray(t *testing.T) {
	input := "/* External inputs */\ntypedef struct {\n  real_T a[0];\n  real_T b;\n} ExtU_m_T;\n"

	h, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, h.Inputs, 1)
	assert.Equal(t, "b", h.Inputs[0].Name)

	_, err = Parse(input, WithStrict(true))
	assert.ErrorIs(t, err, ErrFieldSyntax)
}

func TestParseMissingStructOpening(t *testing.T) {
	input := `/* External inputs */
struct notATypedef {
  real_T a;
} ExtU_m_T;
/* External outputs */
typedef struct {
  real_T y;
} ExtY_m_T;
`
	h, err := Parse(input)
	require.NoError(t, err)
	assert.Empty(t, h.Inputs)
	assert.Equal(t, []Section{SectionInputs}, h.Skipped)
	require.Len(t, h.Outputs, 1)

	_, err = Parse(input, WithStrict(true))
	require.ErrorIs(t, err, ErrMissingStructOpening)

	var lerr *LineError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 2, lerr.Line)
	assert.Contains(t, err.Error(), "struct notATypedef")
}

func TestParseMarkerOnLastLine(t *testing.T) {
	h, err := Parse("/* Block states */")
	require.NoError(t, err)
	assert.Equal(t, []Section{SectionStates}, h.Skipped)

	_, err = Parse("/* Block states */", WithStrict(true))
	assert.ErrorIs(t, err, ErrMissingStructOpening)
}

func TestParseUnterminatedSection(t *testing.T) {
	input := "/* External outputs */\ntypedef struct {\n  real_T y;\n  real_T z[4];\n"

	h, err := Parse(input)
	require.NoError(t, err)
	assert.Len(t, h.Outputs, 2)

	_, err = Parse(input, WithStrict(true))
	assert.ErrorIs(t, err, ErrUnterminatedSection)
}

func TestParseMissingStates(t *testing.T) {
	input := `/* External inputs */
typedef struct {
  real_T u;
} ExtU_m_T;

/* External outputs */
typedef struct {
  real_T y;
} ExtY_m_T;
`
	h, err := Parse(input, WithStrict(true))
	require.NoError(t, err)
	assert.Len(t, h.Inputs, 1)
	assert.Len(t, h.Outputs, 1)
	assert.Empty(t, h.States)
	assert.Empty(t, h.Skipped)
}

func TestParseCRLF(t *testing.T) {
	input := "/* External inputs */\r\ntypedef struct {\r\n  real_T u[2];\r\n} ExtU_m_T;\r\n"

	h, err := Parse(input, WithStrict(true))
	require.NoError(t, err)
	assert.Equal(t, []Field{{Name: "u", CType: "real_T", Size: 2, Line: 3}}, h.Inputs)
}

func TestParseDeterministic(t *testing.T) {
	content := readFixture(t)

	first, err := Parse(content)
	require.NoError(t, err)
	second, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestModelName(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{" * File: M1HPloadcells.h\n", "M1HPloadcells"},
		{" * File:ctrl.h", "ctrl"},
		{" * File: ctrl.c\n", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ModelName(tt.content), tt.content)
	}
}
