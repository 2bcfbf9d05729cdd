// Package chart draws the historical line charts shown for one sensor key.
package chart

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/draintech/drainwatch/internal/device"
	"github.com/draintech/drainwatch/tools/timefmt"
	"github.com/fogleman/gg"
)

const (
	paddingTop        = 50.0
	paddingBottom     = 160.0
	paddingHorizontal = 40.0

	panelColor = "#233044"
	lineColor  = "#4CAF50"
)

// Renderer draws line+point charts of bounded sensor series
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with a fixed canvas size
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

// ScaleBounds returns the vertical scale for a series. Boolean series are
// fixed to [-0.1, 1.1] so the 0/1 points sit clear of the plot edges;
// numeric series span [min, max] of the values.
func ScaleBounds(values []float64, boolean bool) (float64, float64) {
	if boolean {
		return -0.1, 1.1
	}
	if len(values) == 0 {
		return 0, 1
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal
}

// Label formats a point's value for display: Yes/No for boolean series,
// one decimal otherwise
func Label(value float64, boolean bool) string {
	if boolean {
		if value > 0.5 {
			return "Yes"
		}
		return "No"
	}
	return fmt.Sprintf("%.1f", value)
}

// Render draws the series and returns the image. Points are spaced evenly
// by rank, not by timestamp delta. An empty series is an error; callers
// show a "not enough data" message instead.
func (r *Renderer) Render(points []device.HistoryPoint, boolean bool) (image.Image, error) {
	dc, err := r.draw(points, boolean)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// WritePNG renders the series and encodes it as PNG
func (r *Renderer) WritePNG(w io.Writer, points []device.HistoryPoint, boolean bool) error {
	dc, err := r.draw(points, boolean)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// RenderFile renders the series to a PNG file
func (r *Renderer) RenderFile(path string, points []device.HistoryPoint, boolean bool) error {
	dc, err := r.draw(points, boolean)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}

func (r *Renderer) draw(points []device.HistoryPoint, boolean bool) (*gg.Context, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to render")
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	minVal, maxVal := ScaleBounds(values, boolean)
	valueRange := maxVal - minVal
	if valueRange == 0 {
		valueRange = 1
	}

	width := float64(r.width)
	height := float64(r.height)
	graphHeight := height - paddingBottom - paddingTop
	graphWidth := width - paddingHorizontal*2
	// A single point has no horizontal step; flooring the denominator
	// keeps it renderable.
	stepX := graphWidth / math.Max(float64(len(points)-1), 1)

	dc := gg.NewContext(r.width, r.height)
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	dc.SetHexColor(panelColor)
	dc.DrawRectangle(0, 0, width, height-paddingBottom+20)
	dc.Fill()

	type position struct{ x, y float64 }
	positions := make([]position, len(points))
	for i, p := range points {
		normalized := (p.Value - minVal) / valueRange
		positions[i] = position{
			x: paddingHorizontal + float64(i)*stepX,
			y: (paddingTop + graphHeight) - normalized*graphHeight,
		}
	}

	dc.SetHexColor(lineColor)
	dc.SetLineWidth(4)
	for i := 0; i < len(positions)-1; i++ {
		dc.DrawLine(positions[i].x, positions[i].y, positions[i+1].x, positions[i+1].y)
		dc.Stroke()
	}

	for i, pos := range positions {
		dc.SetHexColor("#FFFFFF")
		dc.DrawCircle(pos.x, pos.y, 4)
		dc.Fill()

		dc.DrawStringAnchored(Label(points[i].Value, boolean), pos.x, pos.y-12, 0.5, 0.5)

		dc.SetHexColor("#000000")
		dc.Push()
		dc.RotateAbout(-math.Pi/2, pos.x, height-10)
		dc.DrawStringAnchored(timefmt.Label(points[i].TimestampMillis), pos.x, height-10, 0, 0.4)
		dc.Pop()
	}

	return dc, nil
}
