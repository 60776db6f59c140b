package chart

import (
	"fmt"

	"PortfolioAssist/internal/domain/models"
)

// Format is an encoded frame type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Draw paints one complete frame of entries at progress in [0, 1].
// A nil canvas is skipped.
func Draw(c Canvas, entries []models.Investment, progress float64) {
	if c == nil {
		return
	}
	w, h := c.Bounds()
	g := GeometryFor(w, h)
	c.Clear()

	slices := Layout(entries, progress, g)
	if len(slices) == 0 {
		drawEmpty(c, g)
		return
	}
	for _, s := range slices {
		c.Wedge(g.CX, g.CY, g.Radius, s.Start, s.Sweep, Style{
			Fill:        s.Color,
			Stroke:      SliceOutline,
			StrokeWidth: OutlineWidth,
		})
		if s.ShowLabel {
			c.Label(s.Label, s.LabelX, s.LabelY, TextStyle{Color: LabelColor, Size: LabelTextSize, Bold: true})
		}
	}
}

func drawEmpty(c Canvas, g Geometry) {
	c.Ring(g.CX, g.CY, g.Radius, Style{Stroke: EmptyRingColor, StrokeWidth: EmptyRingWidth})
	c.Label(EmptyStateText, g.CX, g.CY, TextStyle{Color: EmptyTextColor, Size: EmptyTextSize})
}

// Renderer encodes frames at a default canvas size.
type Renderer struct {
	width  int
	height int
}

// Option configures Renderer.
type Option func(*Renderer)

// WithSize sets the default canvas size.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// NewRenderer creates a frame renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the default canvas size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Render draws one frame and encodes it. Zero width or height uses the default size.
func (r *Renderer) Render(format Format, entries []models.Investment, progress float64, width, height int) ([]byte, error) {
	if width <= 0 {
		width = r.width
	}
	if height <= 0 {
		height = r.height
	}

	var (
		s   *Surface
		err error
	)
	switch format {
	case FormatSVG:
		s, err = NewSVGSurface(width, height)
	case FormatPNG:
		s, err = NewPNGSurface(width, height)
	default:
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
	if err != nil {
		return nil, err
	}

	Draw(s, entries, progress)
	return s.Encode()
}
