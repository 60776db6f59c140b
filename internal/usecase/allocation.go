package usecase

import (
	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/pkg/util"
)

// Summarize derives totals and per-entry percentages from a snapshot. Chart
// labels, legend, table and the sync report all read from this one result.
func Summarize(snap models.Snapshot) models.Allocation {
	total := chart.Total(snap.Entries)
	a := models.Allocation{
		Version:    snap.Version,
		Total:      total,
		TotalLabel: util.FormatDollars(total),
		Count:      len(snap.Entries),
		Rows:       make([]models.AllocationRow, 0, len(snap.Entries)),
	}
	if a.Count > 0 {
		a.Average = total / float64(a.Count)
		a.AverageLabel = util.FormatDollars(a.Average)
	}

	for i, e := range snap.Entries {
		share := chart.Share(e.Amount, total)
		a.Rows = append(a.Rows, models.AllocationRow{
			Index:        i,
			Name:         e.Name,
			Amount:       e.Amount,
			AmountLabel:  util.FormatDollars(e.Amount),
			Percent:      util.RoundTo(share, 1),
			PercentLabel: util.FormatPercent(share),
			Color:        chart.ColorAt(i),
		})
	}
	return a
}
