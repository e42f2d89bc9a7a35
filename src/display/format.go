package display

import (
	"strings"

	"market-monitor/src/models"

	"github.com/shopspring/decimal"
)

// Indonesian number rendering: "." groups thousands, "," separates decimals.
const (
	groupSeparator   = "."
	decimalSeparator = ","
	maxFraction      = 3
)

// -----------------------------------------------------------------------------

// Format renders a display value the way IDX prices are shown: grouped
// thousands and no trailing zero fraction ("9.250", "2.980,5"). Change carries
// an explicit sign. The percent has two fixed decimals and is left empty when
// missing.
func Format(v models.MDisplayValue) models.MFormattedValue {
	out := models.MFormattedValue{
		Price:  localized(decimal.NewFromFloat(v.Price)),
		Change: signed(decimal.NewFromFloat(v.Change), localized),
	}
	if v.ChangePercent != nil {
		out.ChangePercent = signed(decimal.NewFromFloat(*v.ChangePercent), fixed2) + "%"
	}
	return out
}

// -----------------------------------------------------------------------------

func signed(d decimal.Decimal, render func(decimal.Decimal) string) string {
	s := render(d)
	if !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

// -----------------------------------------------------------------------------

func fixed2(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

// -----------------------------------------------------------------------------

func localized(d decimal.Decimal) string {
	d = d.Round(maxFraction)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(maxFraction)

	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(groupSeparator)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(decimalSeparator)
		b.WriteString(frac)
	}
	return b.String()
}
