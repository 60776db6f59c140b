package chart

// Style describes how a shape is painted. An empty color skips that pass.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// TextStyle describes a centred label.
type TextStyle struct {
	Color string
	Size  float64
	Bold  bool
}

// Canvas is the 2D surface a frame is drawn onto. Angles are radians,
// 0 at 3 o'clock, increasing clockwise.
type Canvas interface {
	Bounds() (width, height int)
	Clear()
	Wedge(cx, cy, radius, start, sweep float64, style Style)
	Ring(cx, cy, radius float64, style Style)
	Label(text string, x, y float64, style TextStyle)
}
