package extract_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/eda-runner/internal/extract"
	"github.com/daryltucker/eda-runner/internal/model"
)

const sampleStat = `
=== top ===

   Number of wires:                 42
   Number of wire bits:            310
   Number of cells:                200
     $_AND_                         80
     $_XOR_                        120

   Chip area for module '\top': 1520.25 um²

Longest path (levels): 15
`

func TestExtract_RequiredFields(t *testing.T) {
	t.Parallel()

	m, err := extract.Yosys{}.Extract(model.ToolOutput{Stdout: sampleStat})

	require.NoError(t, err)
	assert.Equal(t, 200, m.Cells)
	assert.Equal(t, 15, m.Levels)
	require.NotNil(t, m.AreaUm2)
	assert.InDelta(t, 1520.25, *m.AreaUm2, 1e-9)
	require.NotNil(t, m.Warnings)
	assert.Equal(t, 0, *m.Warnings)
}

func TestExtract_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cells, levels int
	}{
		{0, 0},
		{1, 1},
		{95, 10},
		{123456, 87},
	}

	for _, tt := range tests {
		out := model.ToolOutput{Stdout: "Number of cells: " + strconv.Itoa(tt.cells) + "\nLongest path (levels): " + strconv.Itoa(tt.levels) + "\n"}
		m, err := extract.Yosys{}.Extract(out)
		require.NoError(t, err)
		assert.Equal(t, tt.cells, m.Cells)
		assert.Equal(t, tt.levels, m.Levels)
		assert.Nil(t, m.AreaUm2)
	}
}

func TestExtract_CaseInsensitiveScalars(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{Stdout: "NUMBER OF CELLS: 7\nlongest PATH (Levels): 3\nchip area for module top: 2.5 UM2\n"}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	assert.Equal(t, 7, m.Cells)
	assert.Equal(t, 3, m.Levels)
	require.NotNil(t, m.AreaUm2)
	assert.InDelta(t, 2.5, *m.AreaUm2, 1e-9)
}

func TestExtract_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{
		Stdout: "Number of cells: 10\nLongest path (levels): 4\n",
		Stderr: "Number of cells: 99\nLongest path (levels): 9\n",
	}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	assert.Equal(t, 10, m.Cells)
	assert.Equal(t, 4, m.Levels)
}

func TestExtract_StderrIsScanned(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{
		Stdout: "Number of cells: 10\n",
		Stderr: "Longest path (levels): 4\n",
	}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	assert.Equal(t, 4, m.Levels)
}

func TestExtract_MissingRequiredField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"no cells", "Longest path (levels): 4\nChip area for module top: 3.0 um2\nWarning: 2\n"},
		{"no levels", "Number of cells: 12\nChip area for module top: 3.0 um2\n"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := extract.Yosys{}.Extract(model.ToolOutput{Stdout: tt.input})
			require.ErrorIs(t, err, extract.ErrNotParseable)
		})
	}
}

func TestExtract_AreaRequiresUnit(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{Stdout: "Number of cells: 1\nLongest path (levels): 1\nChip area for module top: 4.0\n"}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	assert.Nil(t, m.AreaUm2)
}

func TestExtract_WarningsAreSummed(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{
		Stdout: "Number of cells: 5\nLongest path (levels): 2\nWarning: 2\n",
		Stderr: "Warning: 1\n",
	}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	require.NotNil(t, m.Warnings)
	assert.Equal(t, 3, *m.Warnings)
}

func TestExtract_WarningTextWithoutCount(t *testing.T) {
	t.Parallel()

	out := model.ToolOutput{Stdout: "Number of cells: 5\nLongest path (levels): 2\nWarning: wire 'x' is unused\n"}
	m, err := extract.Yosys{}.Extract(out)

	require.NoError(t, err)
	assert.Equal(t, 0, *m.Warnings)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	e, err := extract.Lookup("yosys")
	require.NoError(t, err)
	assert.Equal(t, "yosys", e.Name())

	_, err = extract.Lookup("vivado")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yosys")
	assert.Contains(t, extract.Names(), "yosys")
}
