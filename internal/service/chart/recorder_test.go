package chart

import "fmt"

type op struct {
	kind  string
	cx    float64
	cy    float64
	r     float64
	start float64
	sweep float64
	text  string
	x, y  float64
	style Style
	text2 TextStyle
}

// recordingCanvas captures draw calls for assertions.
type recordingCanvas struct {
	w, h   int
	clears int
	ops    []op
}

func newRecordingCanvas(w, h int) *recordingCanvas {
	return &recordingCanvas{w: w, h: h}
}

func (c *recordingCanvas) Bounds() (int, int) { return c.w, c.h }

func (c *recordingCanvas) Clear() {
	c.clears++
	c.ops = nil
}

func (c *recordingCanvas) Wedge(cx, cy, radius, start, sweep float64, style Style) {
	c.ops = append(c.ops, op{kind: "wedge", cx: cx, cy: cy, r: radius, start: start, sweep: sweep, style: style})
}

func (c *recordingCanvas) Ring(cx, cy, radius float64, style Style) {
	c.ops = append(c.ops, op{kind: "ring", cx: cx, cy: cy, r: radius, style: style})
}

func (c *recordingCanvas) Label(text string, x, y float64, style TextStyle) {
	c.ops = append(c.ops, op{kind: "label", text: text, x: x, y: y, text2: style})
}

func (c *recordingCanvas) ofKind(kind string) []op {
	var out []op
	for _, o := range c.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func (o op) String() string {
	return fmt.Sprintf("%s(%q start=%.3f sweep=%.3f)", o.kind, o.text, o.start, o.sweep)
}
