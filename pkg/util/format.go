package util

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// displayFractionDigits matches the default browser number formatting (at most three decimals).
const displayFractionDigits = 3

// FormatDollars renders v as "$1,234.5": grouped thousands, trailing zeros dropped.
func FormatDollars(v float64) string {
	d := decimal.NewFromFloat(v).Round(displayFractionDigits)
	fraction := 0
	if s := d.String(); strings.Contains(s, ".") {
		fraction = len(s) - strings.Index(s, ".") - 1
	}
	minor := d.Shift(int32(fraction)).IntPart()
	return money.NewFormatter(fraction, ".", ",", "$", "$1").Format(minor)
}

// FormatPercent renders p with one decimal and a percent sign, e.g. "30.0%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).StringFixed(1) + "%"
}

// RoundTo rounds v to the given number of decimals, half away from zero.
func RoundTo(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
