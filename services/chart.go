package services

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ============================================================================
// BUDGET VISUALIZATION
// ============================================================================

// ChartRenderer produces a self-contained image artifact for the
// essential/discretionary split. The rendering technology is an
// implementation detail behind this interface.
type ChartRenderer interface {
	RenderAllocation(essential, discretionary float64) (string, error)
}

// PieChartRenderer draws the split as a two-slice pie chart and returns it
// as a PNG data URI, directly embeddable by any presentation layer. It is
// stateless: a fresh chart is built per call, so concurrent use is safe.
type PieChartRenderer struct {
	width  int
	height int
}

func NewPieChartRenderer() *PieChartRenderer {
	return &PieChartRenderer{width: 512, height: 512}
}

var (
	essentialColor     = drawing.Color{R: 102, G: 179, B: 255, A: 255} // #66b3ff
	discretionaryColor = drawing.Color{R: 153, G: 255, B: 153, A: 255} // #99ff99
	placeholderColor   = drawing.Color{R: 220, G: 220, B: 220, A: 255}
)

// RenderAllocation never fails for non-negative inputs: when both totals
// are zero it renders a single "No data" slice instead of dividing by zero.
func (r *PieChartRenderer) RenderAllocation(essential, discretionary float64) (string, error) {
	total := essential + discretionary

	var values []chart.Value
	if total == 0 {
		values = []chart.Value{
			{
				Value: 1,
				Label: "No data",
				Style: chart.Style{FillColor: placeholderColor},
			},
		}
	} else {
		values = []chart.Value{
			{
				Value: essential,
				Label: fmt.Sprintf("Essential Expenses (%.1f%%)", essential/total*100),
				Style: chart.Style{FillColor: essentialColor},
			},
			{
				Value: discretionary,
				Label: fmt.Sprintf("Discretionary Expenses (%.1f%%)", discretionary/total*100),
				Style: chart.Style{FillColor: discretionaryColor},
			},
		}
	}

	pie := chart.PieChart{
		Title:  "Budget Allocation",
		Width:  r.width,
		Height: r.height,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("failed to render allocation chart: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return "data:image/png;base64," + encoded, nil
}
