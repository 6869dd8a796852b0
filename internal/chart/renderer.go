// Package chart renders the diagnostic price chart: the observed price
// series, the commission-aware non-loss zone above the breakeven price, the
// current price rule and an optional mean-profit overlay.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/IvanRychkov/catcher/internal/recommend"
)

// Renderer draws recommend.ChartData to a PNG file.
type Renderer struct {
	path   string
	width  vg.Length
	height vg.Length
}

// NewRenderer creates a renderer saving to path.
func NewRenderer(path string) *Renderer {
	return &Renderer{
		path:   path,
		width:  10 * vg.Inch,
		height: 6 * vg.Inch,
	}
}

var _ recommend.ChartRenderer = (*Renderer)(nil)

// Render draws the chart and saves it.
func (r *Renderer) Render(data recommend.ChartData) error {
	if len(data.Times) == 0 || len(data.Times) != len(data.Prices) {
		return fmt.Errorf("chart data has %d timestamps and %d prices", len(data.Times), len(data.Prices))
	}

	p := plot.New()
	p.Title.Text = data.Title
	p.X.Label.Text = "Datetime"
	p.Y.Label.Text = fmt.Sprintf("Price, %s", data.Currency)
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Legend.Top = true

	lo, hi := bounds(data.Prices)
	if data.CurrentPrice < lo {
		lo = data.CurrentPrice
	}
	if data.NonLossPrice > hi {
		hi = data.NonLossPrice
	}

	// Shaded zone where selling the current price clears commission.
	if data.NonLossPrice < hi {
		zone, err := plotter.NewPolygon(plotter.XYs{
			{X: timeX(data, 0), Y: data.NonLossPrice},
			{X: timeX(data, len(data.Times)-1), Y: data.NonLossPrice},
			{X: timeX(data, len(data.Times)-1), Y: hi},
			{X: timeX(data, 0), Y: hi},
		})
		if err != nil {
			return fmt.Errorf("build non-loss zone: %w", err)
		}
		zone.Color = color.NRGBA{G: 180, A: 50}
		zone.LineStyle.Width = 0
		p.Add(zone)
		p.Legend.Add(fmt.Sprintf("Non-loss zone @ %v+", data.NonLossPrice), zone)
	}

	prices := make(plotter.XYs, len(data.Prices))
	for i := range data.Prices {
		prices[i] = plotter.XY{X: timeX(data, i), Y: data.Prices[i]}
	}
	priceLine, err := plotter.NewLine(prices)
	if err != nil {
		return fmt.Errorf("build price line: %w", err)
	}
	priceLine.Color = color.NRGBA{B: 200, A: 255}
	p.Add(priceLine)
	p.Legend.Add(data.Label, priceLine)

	currentLine, err := plotter.NewLine(plotter.XYs{
		{X: timeX(data, 0), Y: data.CurrentPrice},
		{X: timeX(data, len(data.Times)-1), Y: data.CurrentPrice},
	})
	if err != nil {
		return fmt.Errorf("build current price line: %w", err)
	}
	currentLine.Color = color.NRGBA{R: 255, G: 165, A: 255}
	currentLine.Dashes = []vg.Length{vg.Points(2), vg.Points(3)}
	p.Add(currentLine)
	p.Legend.Add(fmt.Sprintf("Current price = %v", data.CurrentPrice), currentLine)

	// The overlay is a 0..1 rate; rescale it into the price range since a
	// second y-axis is not available.
	if len(data.Overlay) > 0 && len(data.Overlay) == len(data.OverlayTimes) {
		overlay := make(plotter.XYs, len(data.Overlay))
		for i, v := range data.Overlay {
			overlay[i] = plotter.XY{
				X: float64(data.OverlayTimes[i].Unix()),
				Y: lo + v*(hi-lo),
			}
		}
		overlayLine, err := plotter.NewLine(overlay)
		if err != nil {
			return fmt.Errorf("build overlay line: %w", err)
		}
		overlayLine.Color = color.NRGBA{R: 220, A: 130}
		p.Add(overlayLine)
		p.Legend.Add("Profit %", overlayLine)
	}

	if err := p.Save(r.width, r.height, r.path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

func timeX(data recommend.ChartData, i int) float64 {
	return float64(data.Times[i].Unix())
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
