package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/daryltucker/eda-runner/internal/model"
)

// Patterns for the Yosys stat/ltp report.
var (
	// Matches "Number of cells:   1234"
	cellsRe = regexp.MustCompile(`(?i)Number of cells:\s*(\d+)`)
	// Matches "Longest path (levels): 17"
	levelsRe = regexp.MustCompile(`(?i)Longest path \(levels\):\s*(\d+)`)
	// Matches "Chip area for module '\top': 1520.5 um²" and the ASCII unit spellings
	areaRe = regexp.MustCompile(`(?i)Chip area for module [^:\n]*:\s*(\d+(?:\.\d+)?|\.\d+)\s*(?:um²|µm²|μm²|um\^2|um2)`)
	// Matches "Warning: 3"; case-sensitive, values are summed
	warningRe = regexp.MustCompile(`Warning:\s*(\d+)`)
)

// Yosys extracts metrics from Yosys synthesis output.
type Yosys struct{}

func (Yosys) Name() string { return "yosys" }

// Extract scans stdout then stderr. Cells and levels are required; area is
// nil when absent; warnings is the sum of every captured count and 0 when
// there are none.
func (Yosys) Extract(out model.ToolOutput) (model.Metrics, error) {
	text := out.Combined()

	cells, ok := firstInt(cellsRe, text)
	if !ok {
		return model.Metrics{}, fmt.Errorf("%w: no %q line", ErrNotParseable, "Number of cells:")
	}
	levels, ok := firstInt(levelsRe, text)
	if !ok {
		return model.Metrics{}, fmt.Errorf("%w: no %q line", ErrNotParseable, "Longest path (levels):")
	}

	m := model.Metrics{Cells: cells, Levels: levels}

	if match := areaRe.FindStringSubmatch(text); match != nil {
		if area, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.AreaUm2 = &area
		}
	}

	warnings := 0
	for _, match := range warningRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		warnings += n
	}
	m.Warnings = &warnings

	return m, nil
}

func firstInt(re *regexp.Regexp, text string) (int, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
