package financial

// DefaultColor is used for categories without an assigned color.
const DefaultColor = "#6b7280"

const incomeColor = "#16a34a"

// ExpenseCategories lists the expense categories in display order.
var ExpenseCategories = []string{
	"Vivienda",
	"Servicios básicos",
	"Cuidados",
	"Salud",
	"Supermercado",
	"Transporte",
	"Medicamentos",
	"Recreación",
	"Varios",
	"Otros",
}

// IncomeCategories lists the income categories in display order.
var IncomeCategories = []string{
	"Pensión",
	"Aporte familiar",
	"Otros ingresos",
}

var categoryColors = map[string]string{
	"Vivienda":          "#1e40af",
	"Servicios básicos": "#3b82f6",
	"Cuidados":          "#ef4444",
	"Salud":             "#f97316",
	"Supermercado":      "#22c55e",
	"Transporte":        "#a855f7",
	"Medicamentos":      "#06b6d4",
	"Recreación":        "#f59e0b",
	"Varios":            DefaultColor,
	"Otros":             DefaultColor,
	"Pensión":           incomeColor,
	"Aporte familiar":   incomeColor,
	"Otros ingresos":    incomeColor,
}

// ColorFor returns the display color of a category.
func ColorFor(category string) string {
	if c, ok := categoryColors[category]; ok {
		return c
	}
	return DefaultColor
}

// ValidCategory reports whether category belongs to the fixed set of txType.
func ValidCategory(txType, category string) bool {
	set := ExpenseCategories
	if txType == TypeIncome {
		set = IncomeCategories
	}
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}
