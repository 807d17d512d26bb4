package financial

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/serena/serena/pkg/period"
)

var ErrPatientNotFound = errors.New("patient not found")

// ValidationError carries a user facing message for a rejected request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type Service struct {
	txs      TransactionRepository
	patients PatientLookup
	loc      *time.Location
}

func NewService(txs TransactionRepository, patients PatientLookup) *Service {
	return &Service{txs: txs, patients: patients, loc: time.Local}
}

func (s *Service) checkPatient(ctx context.Context, id int64) error {
	ok, err := s.patients.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check patient %d: %w", id, err)
	}
	if !ok {
		return ErrPatientNotFound
	}
	return nil
}

// Summary totals income and expenses inside the window and breaks expenses
// down by category.
func (s *Service) Summary(ctx context.Context, patientID int64, p period.Period, w period.Window) (*Summary, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	f := Filter{PatientID: patientID, From: w.From, To: w.To}

	income, expenses, err := s.txs.Totals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	cats, err := s.txs.ExpensesByCategory(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	if cats == nil {
		cats = []CategoryAmount{}
	}
	return &Summary{Income: income, Expenses: expenses, Categories: cats, Period: p.String()}, nil
}

func (s *Service) Categories(ctx context.Context, patientID int64, w period.Window) ([]CategoryAmount, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, err
	}
	cats, err := s.txs.ExpensesByCategory(ctx, Filter{PatientID: patientID, From: w.From, To: w.To})
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	if cats == nil {
		cats = []CategoryAmount{}
	}
	return cats, nil
}

// History lists transactions newest first.
func (s *Service) History(ctx context.Context, patientID int64, w period.Window, limit, offset int) ([]HistoryItem, int, error) {
	if err := s.checkPatient(ctx, patientID); err != nil {
		return nil, 0, err
	}
	txs, total, err := s.txs.List(ctx, Filter{PatientID: patientID, From: w.From, To: w.To}, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	items := make([]HistoryItem, 0, len(txs))
	for _, t := range txs {
		items = append(items, t.ToHistoryItem())
	}
	return items, total, nil
}

// Register validates and stores a manually entered transaction.
func (s *Service) Register(ctx context.Context, req CreateRequest) (*Transaction, error) {
	switch {
	case req.PatientID == nil:
		return nil, invalid("Falta el campo requerido: patient_id")
	case req.Type == nil:
		return nil, invalid("Falta el campo requerido: type")
	case req.Category == nil:
		return nil, invalid("Falta el campo requerido: category")
	case req.Amount == nil:
		return nil, invalid("Falta el campo requerido: amount")
	case req.Date == nil:
		return nil, invalid("Falta el campo requerido: date")
	}

	txType := strings.ToLower(strings.TrimSpace(*req.Type))
	if txType != TypeIncome && txType != TypeExpense {
		return nil, invalid("Tipo de transacción no válido: %s", *req.Type)
	}
	category := strings.TrimSpace(*req.Category)
	if !ValidCategory(txType, category) {
		return nil, invalid("Categoría no válida: %s", category)
	}
	if err := validAmount(*req.Amount); err != nil {
		return nil, err
	}
	date, err := time.ParseInLocation(period.DateLayout, strings.TrimSpace(*req.Date), s.loc)
	if err != nil {
		return nil, invalid("Fecha inválida, use el formato AAAA-MM-DD")
	}

	if err := s.checkPatient(ctx, *req.PatientID); err != nil {
		return nil, err
	}

	t := &Transaction{
		PatientID:   *req.PatientID,
		Type:        txType,
		Category:    category,
		Amount:      *req.Amount,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
	}
	if err := s.txs.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

// Update changes description and/or amount. Id, type and category never
// change; the transaction is flagged as edited.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Transaction, error) {
	if req.Description == nil && req.Amount == nil {
		return nil, invalid("No se recibieron datos para actualizar")
	}
	t, err := s.txs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if err := validAmount(*req.Amount); err != nil {
			return nil, err
		}
		t.Amount = *req.Amount
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	t.Edited = true
	if err := s.txs.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.txs.Delete(ctx, id)
}

func validAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("El monto debe ser un número no negativo")
	}
	return nil
}
