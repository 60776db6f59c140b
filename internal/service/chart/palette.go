package chart

// Palette colors slices by position; entries past the end wrap around.
var Palette = [...]string{
	"#3B82F6",
	"#EF4444",
	"#10B981",
	"#F59E0B",
	"#8B5CF6",
	"#06B6D4",
	"#F97316",
	"#84CC16",
	"#EC4899",
	"#6B7280",
}

// Fixed colors of the drawing.
const (
	SliceOutline   = "#FFFFFF"
	LabelColor     = "#FFFFFF"
	EmptyRingColor = "#E5E7EB"
	EmptyTextColor = "#6B7280"
	EmptyStateText = "No investments yet"
	EmptyTextSize  = 14
	LabelTextSize  = 12
	OutlineWidth   = 2
	EmptyRingWidth = 2
	DefaultWidth   = 300
	DefaultHeight  = 300
)

// ColorAt returns the palette color for the entry at index i.
func ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
