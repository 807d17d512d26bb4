package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/pkg/money"
)

// NoExpensesMessage is shown instead of the chart when there is nothing to draw.
const NoExpensesMessage = "No hay datos de gastos disponibles"

// labelThreshold is the smallest share that still gets a percentage label.
var labelThreshold = decimal.NewFromFloat(0.05)

// Segment is one slice of the expense chart.
type Segment struct {
	Name    string          `json:"name"`
	Amount  decimal.Decimal `json:"amount"`
	Color   string          `json:"color"`
	Share   decimal.Decimal `json:"share"`
	Label   string          `json:"label,omitempty"`
	Display string          `json:"display"`
}

// Breakdown is the expense distribution of a period.
type Breakdown struct {
	Segments []Segment       `json:"segments"`
	Total    decimal.Decimal `json:"total"`
	Message  string          `json:"message,omitempty"`
}

// Empty reports whether there is nothing to chart.
func (b Breakdown) Empty() bool {
	return len(b.Segments) == 0
}

// ExpenseBreakdown sorts categories by amount, largest first, and computes
// each share of the total. Labels are dropped for shares under 5%.
func ExpenseBreakdown(categories []financial.CategoryAmount) Breakdown {
	amounts := make([]decimal.Decimal, 0, len(categories))
	for _, c := range categories {
		amounts = append(amounts, c.Amount)
	}
	total := money.Sum(amounts...)
	if len(categories) == 0 || !total.IsPositive() {
		return Breakdown{Segments: []Segment{}, Total: total, Message: NoExpensesMessage}
	}

	sorted := make([]financial.CategoryAmount, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	segs := make([]Segment, 0, len(sorted))
	for _, c := range sorted {
		share := money.Share(c.Amount, total)
		color := c.Color
		if color == "" {
			color = financial.ColorFor(c.Name)
		}
		seg := Segment{
			Name:    c.Name,
			Amount:  c.Amount,
			Color:   color,
			Share:   share,
			Display: money.Format(c.Amount),
		}
		if share.GreaterThanOrEqual(labelThreshold) {
			seg.Label = money.PercentLabel(share)
		}
		segs = append(segs, seg)
	}
	return Breakdown{Segments: segs, Total: total}
}
