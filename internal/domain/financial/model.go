package financial

import (
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/serena/serena/pkg/money"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Transaction maps to the financial_transactions table.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	MessageID   *int64          `db:"message_id" json:"message_id,omitempty"`
	Type        string          `db:"type" json:"type"`
	Category    string          `db:"category" json:"category"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Date        time.Time       `db:"date" json:"date"`
	Edited      bool            `db:"edited" json:"edited"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// CategoryAmount is one slice of the expense breakdown.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Color  string          `json:"color"`
}

// Summary is the response of GET /financial/summary.
type Summary struct {
	Income     decimal.Decimal  `json:"income"`
	Expenses   decimal.Decimal  `json:"expenses"`
	Categories []CategoryAmount `json:"categories"`
	Period     string           `json:"period"`
}

// CategoryRef is the nested category of a history item.
type CategoryRef struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HistoryItem is one row of GET /financial/messages-history.
type HistoryItem struct {
	ID        int64           `json:"id"`
	MessageID *int64          `json:"message_id"`
	Category  CategoryRef     `json:"category"`
	Message   string          `json:"message"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Type      string          `json:"type"`
	Edited    bool            `json:"edited"`
}

// CreateRequest is the body of POST /financial/transactions. Pointers
// distinguish missing fields from zero values.
type CreateRequest struct {
	PatientID   *int64           `json:"patient_id"`
	Type        *string          `json:"type"`
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	Date        *string          `json:"date"`
	Description string           `json:"description"`
}

// UpdateRequest is the body of PUT /financial/transactions/:id.
type UpdateRequest struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (t *Transaction) ToHistoryItem() HistoryItem {
	return HistoryItem{
		ID:        t.ID,
		MessageID: t.MessageID,
		Category:  CategoryRef{Name: t.Category, Color: ColorFor(t.Category)},
		Message:   t.Description,
		Amount:    t.Amount,
		Date:      t.Date,
		Type:      t.Type,
		Edited:    t.Edited,
	}
}
