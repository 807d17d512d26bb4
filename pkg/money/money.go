// Package money holds the decimal helpers shared by the API and the dashboard.
// Importing it makes decimal amounts marshal as plain JSON numbers.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Sum adds amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Share returns part/total as a fraction in [0,1]. A zero total yields zero.
func Share(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.DivRound(total, 6)
}

// PercentLabel renders a fraction as a whole percentage, e.g. 0.5625 -> "56%".
func PercentLabel(share decimal.Decimal) string {
	return share.Mul(hundred).Round(0).String() + "%"
}

// Format renders an amount the way the dashboard shows it: "$45.000" with a
// dot thousands separator and a comma before cents when there are any.
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	d = d.Abs().Round(2)

	intPart := d.Truncate(0)
	frac := d.Sub(intPart).Mul(hundred).IntPart()

	digits := intPart.String()
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "$" + b.String()
	if frac != 0 {
		out += "," + twoDigits(frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + decimal.NewFromInt(n).String()
	}
	return decimal.NewFromInt(n).String()
}

// Parse reads a user typed amount, accepting a comma as decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}
