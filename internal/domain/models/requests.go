package models

import (
	"bytes"
	"encoding/json"
)

// AmountText is an amount as the user typed it. JSON clients may send a
// string or a number; any other JSON value is kept as raw text so that it
// fails amount validation instead of the bind.
type AmountText string

func (a *AmountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountText(s)
	default:
		*a = AmountText(b)
	}
	return nil
}

// AddInvestmentRequest is the raw entry form. Amount stays text so that
// non-numeric input is reported against the field instead of failing the bind.
type AddInvestmentRequest struct {
	Name   string     `json:"name" form:"name" validate:"notblank"`
	Amount AmountText `json:"amount" form:"amount" validate:"notblank,positive_amount"`
}

// ValidationMessages maps "Field.tag" to the message shown next to the field.
func (r *AddInvestmentRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"name.notblank":          "Investment name is required",
		"amount.notblank":        "Investment amount is required",
		"amount.positive_amount": "Please enter a valid positive number",
	}
}

// ChartRequest selects one rendered frame. Width and height of zero mean the
// configured canvas size; other values are clamped to the supported range.
type ChartRequest struct {
	Progress string `json:"progress" query:"progress" default:"1" validate:"numeric"`
	Width    int    `json:"width" query:"width" validate:"gte=0"`
	Height   int    `json:"height" query:"height" validate:"gte=0"`
}
