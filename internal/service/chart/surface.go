package chart

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// surfaceDPI makes font sizes map one to one onto pixels.
const surfaceDPI = 72

// Surface is a Canvas backed by a go-chart renderer.
type Surface struct {
	provider gochart.RendererProvider
	width    int
	height   int
	r        gochart.Renderer
	err      error
}

// NewSVGSurface returns a surface that encodes to an SVG document.
func NewSVGSurface(width, height int) (*Surface, error) {
	return newSurface(gochart.SVG, width, height)
}

// NewPNGSurface returns a surface that encodes to a PNG image.
func NewPNGSurface(width, height int) (*Surface, error) {
	return newSurface(gochart.PNG, width, height)
}

func newSurface(provider gochart.RendererProvider, width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	s := &Surface{provider: provider, width: width, height: height}
	s.Clear()
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

func (s *Surface) Bounds() (int, int) { return s.width, s.height }

// Clear starts a fresh, transparent frame.
func (s *Surface) Clear() {
	r, err := s.provider(s.width, s.height)
	if err != nil {
		s.err = fmt.Errorf("create renderer: %w", err)
		s.r = nil
		return
	}
	r.SetDPI(surfaceDPI)
	s.r = r
}

func (s *Surface) Wedge(cx, cy, radius, start, sweep float64, style Style) {
	if s.r == nil || sweep <= 0 {
		return
	}
	x, y := int(math.Round(cx)), int(math.Round(cy))
	s.applyStyle(style)
	s.r.MoveTo(x, y)
	s.arc(x, y, radius, start, sweep)
	s.r.LineTo(x, y)
	s.r.Close()
	s.paint(style)
}

func (s *Surface) Ring(cx, cy, radius float64, style Style) {
	if s.r == nil {
		return
	}
	x, y := int(math.Round(cx)), int(math.Round(cy))
	s.applyStyle(style)
	s.r.MoveTo(x+int(math.Round(radius)), y)
	s.arc(x, y, radius, 0, 2*math.Pi)
	s.r.Close()
	s.paint(style)
}

func (s *Surface) Label(text string, x, y float64, style TextStyle) {
	if s.r == nil || text == "" {
		return
	}
	font, err := gochart.GetDefaultFont()
	if err != nil {
		s.err = fmt.Errorf("load font: %w", err)
		return
	}
	s.r.ResetStyle()
	s.r.SetFont(font)
	s.r.SetFontSize(style.Size)
	s.r.SetFontColor(parseColor(style.Color))
	box := s.r.MeasureText(text)
	s.r.Text(text, int(math.Round(x))-box.Width()/2, int(math.Round(y))+box.Height()/2)
}

// Encode serializes the current frame.
func (s *Surface) Encode() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.r == nil {
		return nil, fmt.Errorf("surface has no renderer")
	}
	var buf bytes.Buffer
	if err := s.r.Save(&buf); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// arc splits sweeps larger than half a turn so a full circle keeps distinct end points.
func (s *Surface) arc(x, y int, radius, start, sweep float64) {
	for sweep > 0 {
		step := math.Min(sweep, math.Pi)
		s.r.ArcTo(x, y, radius, radius, start, step)
		start += step
		sweep -= step
	}
}

func (s *Surface) applyStyle(style Style) {
	s.r.ResetStyle()
	if style.Fill != "" {
		s.r.SetFillColor(parseColor(style.Fill))
	}
	if style.Stroke != "" {
		s.r.SetStrokeColor(parseColor(style.Stroke))
		s.r.SetStrokeWidth(style.StrokeWidth)
	}
}

func (s *Surface) paint(style Style) {
	switch {
	case style.Fill != "" && style.Stroke != "":
		s.r.FillStroke()
	case style.Fill != "":
		s.r.Fill()
	default:
		s.r.Stroke()
	}
}

func parseColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
