package chart_test

import (
	"bytes"
	"testing"

	"github.com/draintech/drainwatch/internal/chart"
	"github.com/draintech/drainwatch/internal/device"
)

func TestScaleBounds_BooleanIsFixed(t *testing.T) {
	min, max := chart.ScaleBounds([]float64{0, 1, 0, 1}, true)
	if min != -0.1 || max != 1.1 {
		t.Errorf("boolean scale = [%v, %v], want [-0.1, 1.1]", min, max)
	}
}

func TestScaleBounds_NumericSpansValues(t *testing.T) {
	min, max := chart.ScaleBounds([]float64{2.0, 5.0, 3.0}, false)
	if min != 2.0 || max != 5.0 {
		t.Errorf("numeric scale = [%v, %v], want [2, 5]", min, max)
	}
}

func TestLabel_Formats(t *testing.T) {
	if got := chart.Label(1, true); got != "Yes" {
		t.Errorf("Label(1, boolean) = %s, want Yes", got)
	}
	if got := chart.Label(0, true); got != "No" {
		t.Errorf("Label(0, boolean) = %s, want No", got)
	}
	if got := chart.Label(2.25, false); got != "2.2" {
		t.Errorf("Label(2.25) = %s, want 2.2", got)
	}
}

func TestRender_SinglePoint(t *testing.T) {
	r := chart.NewRenderer(400, 300)

	// one point means a zero-length X step; must not divide by zero
	img, err := r.Render([]device.HistoryPoint{{Value: 3.0, TimestampMillis: 1700000000000}}, false)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 300 {
		t.Errorf("image size = %dx%d, want 400x300", bounds.Dx(), bounds.Dy())
	}
}

func TestRender_FlatSeries(t *testing.T) {
	r := chart.NewRenderer(400, 300)

	// min == max falls back to a unit range instead of dividing by zero
	points := []device.HistoryPoint{
		{Value: 4.0, TimestampMillis: 1000},
		{Value: 4.0, TimestampMillis: 2000},
	}
	if _, err := r.Render(points, false); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}

func TestRender_EmptyIsAnError(t *testing.T) {
	r := chart.NewRenderer(400, 300)
	if _, err := r.Render(nil, false); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestWritePNG_EncodesPNG(t *testing.T) {
	r := chart.NewRenderer(400, 300)
	points := []device.HistoryPoint{
		{Value: 0, TimestampMillis: 1000},
		{Value: 1, TimestampMillis: 2000},
	}

	var buf bytes.Buffer
	if err := r.WritePNG(&buf, points, true); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
		t.Error("output is not a PNG")
	}
}
