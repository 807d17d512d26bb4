package dashboard

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/pkg/money"
)

func amounts(pairs ...interface{}) []financial.CategoryAmount {
	out := make([]financial.CategoryAmount, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, financial.CategoryAmount{
			Name:   pairs[i].(string),
			Amount: decimal.NewFromInt(int64(pairs[i+1].(int))),
		})
	}
	return out
}

func TestExpenseBreakdown_Example(t *testing.T) {
	b := ExpenseBreakdown(amounts("Vivienda", 45000, "Salud", 35000))

	if !b.Total.Equal(decimal.NewFromInt(80000)) {
		t.Errorf("expected total 80000, got %s", b.Total)
	}
	if len(b.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(b.Segments))
	}
	if b.Segments[0].Name != "Vivienda" || b.Segments[0].Label != "56%" {
		t.Errorf("unexpected first segment %+v", b.Segments[0])
	}
	if b.Segments[1].Label != "44%" {
		t.Errorf("expected 44%% for Salud, got %q", b.Segments[1].Label)
	}
	if b.Segments[0].Color != "#1e40af" {
		t.Errorf("expected category color fallback, got %s", b.Segments[0].Color)
	}
	if b.Segments[0].Display != "$45.000" {
		t.Errorf("unexpected display amount %s", b.Segments[0].Display)
	}
}

func TestExpenseBreakdown_SortsDescending(t *testing.T) {
	b := ExpenseBreakdown(amounts("Transporte", 5000, "Cuidados", 60000, "Salud", 20000))
	want := []string{"Cuidados", "Salud", "Transporte"}
	for i, name := range want {
		if b.Segments[i].Name != name {
			t.Errorf("segment %d: expected %s, got %s", i, name, b.Segments[i].Name)
		}
	}
}

func TestExpenseBreakdown_SuppressesSmallLabels(t *testing.T) {
	b := ExpenseBreakdown(amounts("Vivienda", 96000, "Varios", 4000))
	if b.Segments[1].Label != "" {
		t.Errorf("expected no label under 5%%, got %q", b.Segments[1].Label)
	}

	b = ExpenseBreakdown(amounts("Vivienda", 95000, "Varios", 5000))
	if b.Segments[1].Label != "5%" {
		t.Errorf("expected label at exactly 5%%, got %q", b.Segments[1].Label)
	}
}

func TestExpenseBreakdown_SegmentsSumToTotal(t *testing.T) {
	b := ExpenseBreakdown(amounts("Vivienda", 45000, "Salud", 35000, "Varios", 1234))
	sum := decimal.Zero
	for _, s := range b.Segments {
		sum = sum.Add(s.Amount)
	}
	if !sum.Equal(b.Total) {
		t.Errorf("segments sum %s, total %s", sum, b.Total)
	}
	if !b.Total.Equal(money.Sum(decimal.NewFromInt(45000), decimal.NewFromInt(35000), decimal.NewFromInt(1234))) {
		t.Errorf("unexpected total %s", b.Total)
	}
}

func TestExpenseBreakdown_Empty(t *testing.T) {
	for name, in := range map[string][]financial.CategoryAmount{
		"nil":        nil,
		"zero total": amounts("Vivienda", 0),
	} {
		t.Run(name, func(t *testing.T) {
			b := ExpenseBreakdown(in)
			if !b.Empty() || b.Message != NoExpensesMessage {
				t.Errorf("expected empty breakdown, got %+v", b)
			}
			if b.Segments == nil {
				t.Error("segments must be an empty slice, not nil")
			}
		})
	}
}

func TestExpenseBreakdown_DoesNotReorderInput(t *testing.T) {
	in := amounts("Salud", 1, "Vivienda", 2)
	ExpenseBreakdown(in)
	if in[0].Name != "Salud" {
		t.Error("input slice was reordered")
	}
}
