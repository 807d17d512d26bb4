package apiclient

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/patient"
	"github.com/serena/serena/pkg/money"
	"github.com/serena/serena/pkg/period"
)

// Transaction is a history row reshaped for display.
type Transaction struct {
	ID          int64           `json:"id"`
	MessageID   *int64          `json:"message_id"`
	Category    string          `json:"category"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Edited      bool            `json:"edited"`
}

// NewTransaction is what the caregiver types in the registration form.
type NewTransaction struct {
	Type        string
	Category    string
	Amount      string
	Description string
}

// TransactionEdit is what the caregiver changes in the edit dialog.
type TransactionEdit struct {
	Description string
	Amount      string
}

type registerResponse struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	Transaction *financial.Transaction `json:"transaction"`
}

type updateBody struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Edited      bool            `json:"edited"`
}

const (
	msgRequiredFields = "Por favor, complete los campos de categoría y monto"
	msgInvalidAmount  = "El monto debe ser un número no negativo"
	manualPrefix      = "Registro manual: "
	noDescription     = "Sin descripción"
)

// Patients lists the patients known to the backend.
func (c *Client) Patients(ctx context.Context) ([]patient.ListItem, error) {
	var out []patient.ListItem
	err := c.do(ctx, "patients", http.MethodGet, "/api/patient/list", nil, nil, &out, "Error obteniendo pacientes")
	return out, err
}

// FinancialSummary fetches income, expenses and the category breakdown.
func (c *Client) FinancialSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*financial.Summary, error) {
	var out financial.Summary
	if err := c.do(ctx, "financial_summary", http.MethodGet, "/api/financial/summary",
		periodQuery(patientID, p, rng), nil, &out, "Error obteniendo resumen financiero"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpensesByCategory fetches the expense breakdown of the period.
func (c *Client) ExpensesByCategory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]financial.CategoryAmount, error) {
	var out []financial.CategoryAmount
	if err := c.do(ctx, "expenses_by_category", http.MethodGet, "/api/financial/expenses/categories",
		periodQuery(patientID, p, rng), nil, &out, "Error obteniendo gastos por categoría"); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionsHistory fetches transactions newest first, flattening the
// category and formatting dates as DD/MM/YY.
func (c *Client) TransactionsHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]Transaction, error) {
	var raw []financial.HistoryItem
	if err := c.do(ctx, "transactions_history", http.MethodGet, "/api/financial/messages-history",
		periodQuery(patientID, p, rng), nil, &raw, "Error obteniendo historial de transacciones"); err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(raw))
	for _, it := range raw {
		out = append(out, Transaction{
			ID:          it.ID,
			MessageID:   it.MessageID,
			Category:    it.Category.Name,
			Color:       it.Category.Color,
			Description: it.Message,
			Amount:      it.Amount,
			Date:        FormatDate(it.Date.In(c.now().Location())),
			Type:        it.Type,
			Edited:      it.Edited,
		})
	}
	return out, nil
}

// parseAmount validates a form amount.
func parseAmount(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, validationError(msgRequiredFields)
	}
	d, err := money.Parse(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, validationError(msgInvalidAmount)
	}
	return d, nil
}

// RegisterTransaction validates the form and posts a manual transaction
// dated today.
func (c *Client) RegisterTransaction(ctx context.Context, patientID int64, in NewTransaction) (*financial.Transaction, error) {
	category := strings.TrimSpace(in.Category)
	if category == "" || strings.TrimSpace(in.Amount) == "" {
		return nil, validationError(msgRequiredFields)
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	txType := in.Type
	if txType == "" {
		txType = financial.TypeExpense
	}
	if txType != financial.TypeExpense && txType != financial.TypeIncome {
		return nil, validationError("Tipo de movimiento no válido")
	}
	if !financial.ValidCategory(txType, category) {
		return nil, validationError("Categoría no válida: " + category)
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		desc = noDescription
	}
	date := c.now().Format(period.DateLayout)

	req := financial.CreateRequest{
		PatientID:   &patientID,
		Type:        &txType,
		Category:    &category,
		Amount:      &amount,
		Date:        &date,
		Description: manualPrefix + desc,
	}
	var out registerResponse
	if err := c.do(ctx, "register_transaction", http.MethodPost, "/api/financial/transactions",
		nil, req, &out, "Error registrando transacción"); err != nil {
		return nil, err
	}
	return out.Transaction, nil
}

// UpdateTransaction sends the edited description and amount.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, in TransactionEdit) (*financial.Transaction, error) {
	if id <= 0 {
		return nil, validationError("ID de transacción no proporcionado")
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	var out financial.Transaction
	body := updateBody{Description: strings.TrimSpace(in.Description), Amount: amount, Edited: true}
	if err := c.do(ctx, "update_transaction", http.MethodPut, "/api/financial/transactions/"+strconv.FormatInt(id, 10),
		nil, body, &out, "Error actualizando transacción"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTransaction removes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("ID de transacción no proporcionado")
	}
	return c.do(ctx, "delete_transaction", http.MethodDelete, "/api/financial/transactions/"+strconv.FormatInt(id, 10),
		nil, nil, nil, "Error eliminando transacción")
}
