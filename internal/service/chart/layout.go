package chart

import (
	"math"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/pkg/util"
)

const (
	// StartAngle is 12 o'clock; angles grow clockwise from 3 o'clock.
	StartAngle = -math.Pi / 2
	// LabelThreshold is the smallest full-extent slice angle, in radians, that carries a label.
	LabelThreshold = 0.2

	labelRadiusRatio = 0.7
	ringMargin       = 20
)

// Geometry is the circle the chart is drawn into.
type Geometry struct {
	CX, CY, Radius float64
}

// GeometryFor centres the chart on a width x height canvas.
func GeometryFor(width, height int) Geometry {
	cx, cy := float64(width)/2, float64(height)/2
	return Geometry{CX: cx, CY: cy, Radius: math.Max(0, math.Min(cx, cy)-ringMargin)}
}

// Slice is one laid-out wedge.
type Slice struct {
	Index     int
	Name      string
	Amount    float64
	Color     string
	Start     float64
	Sweep     float64
	FullSweep float64
	Share     float64
	Label     string
	ShowLabel bool
	LabelX    float64
	LabelY    float64
}

// End is the angle where the wedge stops.
func (s Slice) End() float64 { return s.Start + s.Sweep }

// Total sums the amounts of entries.
func Total(entries []models.Investment) float64 {
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

// Share is amount as a percentage of total; zero when total is not positive.
func Share(amount, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return amount / total * 100
}

// Layout partitions the circle among entries at the given animation progress.
// It returns nil when there is nothing to draw.
func Layout(entries []models.Investment, progress float64, g Geometry) []Slice {
	total := Total(entries)
	if len(entries) == 0 || total <= 0 {
		return nil
	}
	progress = util.Clamp(progress, 0, 1)

	slices := make([]Slice, 0, len(entries))
	current := StartAngle
	for i, e := range entries {
		full := e.Amount / total * 2 * math.Pi
		sweep := full * progress
		mid := current + sweep/2
		share := Share(e.Amount, total)
		slices = append(slices, Slice{
			Index:     i,
			Name:      e.Name,
			Amount:    e.Amount,
			Color:     ColorAt(i),
			Start:     current,
			Sweep:     sweep,
			FullSweep: full,
			Share:     share,
			Label:     util.FormatPercent(share),
			ShowLabel: full > LabelThreshold,
			LabelX:    g.CX + math.Cos(mid)*g.Radius*labelRadiusRatio,
			LabelY:    g.CY + math.Sin(mid)*g.Radius*labelRadiusRatio,
		})
		current += sweep
	}
	return slices
}
