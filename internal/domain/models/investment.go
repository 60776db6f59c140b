package models

// Investment is one named holding. Entries are immutable once stored and keep insertion order.
type Investment struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Snapshot is a point-in-time copy of the portfolio.
type Snapshot struct {
	Entries []Investment
	Version uint64
}

// Count returns the number of entries.
func (s Snapshot) Count() int { return len(s.Entries) }

// Empty reports whether the snapshot has no entries.
func (s Snapshot) Empty() bool { return len(s.Entries) == 0 }

// AllocationRow is one line of the breakdown shared by the chart labels, legend and table.
type AllocationRow struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	AmountLabel  string  `json:"amountLabel"`
	Percent      float64 `json:"percent"`
	PercentLabel string  `json:"percentLabel"`
	Color        string  `json:"color"`
}

// Allocation is the summary of a snapshot.
type Allocation struct {
	Version      uint64          `json:"version"`
	Total        float64         `json:"total"`
	TotalLabel   string          `json:"totalLabel"`
	Count        int             `json:"count"`
	Average      float64         `json:"average"`
	AverageLabel string          `json:"averageLabel,omitempty"`
	Rows         []AllocationRow `json:"rows"`
}
