package financial

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type transactionRepoPG struct{ pool *pgxpool.Pool }

func NewTransactionRepoPG(pool *pgxpool.Pool) TransactionRepository {
	return &transactionRepoPG{pool: pool}
}

func (r *transactionRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const txCols = `id, patient_id, message_id, type, category, amount::text, description, date, edited, created_at, updated_at`

// Amounts travel as text so NUMERIC precision survives the round trip.
func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	var amount string
	err := row.Scan(&t.ID, &t.PatientID, &t.MessageID, &t.Type, &t.Category, &amount,
		&t.Description, &t.Date, &t.Edited, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepoPG) Create(ctx context.Context, t *Transaction) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO financial_transactions (patient_id, message_id, type, category, amount, description, date, edited)
		VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		t.PatientID, t.MessageID, t.Type, t.Category, t.Amount.String(), t.Description, t.Date, t.Edited,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *transactionRepoPG) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	return scanTransaction(r.conn(ctx).QueryRow(ctx, `SELECT `+txCols+` FROM financial_transactions WHERE id = $1`, id))
}

func (r *transactionRepoPG) Update(ctx context.Context, t *Transaction) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE financial_transactions SET description=$2, amount=$3::numeric, edited=$4, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Description, t.Amount.String(), t.Edited)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM financial_transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const windowClause = ` WHERE patient_id = $1 AND date >= $2 AND date < $3`

// List returns one page of the window; limit <= 0 returns every row.
func (r *transactionRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Transaction, int, error) {
	var pageSize interface{}
	if limit > 0 {
		pageSize = limit
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM financial_transactions`+windowClause,
		f.PatientID, f.From, f.To).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+txCols+` FROM financial_transactions`+windowClause+`
		ORDER BY date DESC, id DESC LIMIT $4 OFFSET $5`,
		f.PatientID, f.From, f.To, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *transactionRepoPG) Totals(ctx context.Context, f Filter) (decimal.Decimal, decimal.Decimal, error) {
	var income, expenses string
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0)::text,
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)::text
		FROM financial_transactions`+windowClause,
		f.PatientID, f.From, f.To).Scan(&income, &expenses)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	in, err := decimal.NewFromString(income)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	out, err := decimal.NewFromString(expenses)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return in, out, nil
}

func (r *transactionRepoPG) ExpensesByCategory(ctx context.Context, f Filter) ([]CategoryAmount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT category, SUM(amount)::text
		FROM financial_transactions`+windowClause+` AND type = 'expense'
		GROUP BY category
		ORDER BY SUM(amount) DESC, category`,
		f.PatientID, f.From, f.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryAmount
	for rows.Next() {
		var ca CategoryAmount
		var amount string
		if err := rows.Scan(&ca.Name, &amount); err != nil {
			return nil, err
		}
		if ca.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		ca.Color = ColorFor(ca.Name)
		out = append(out, ca)
	}
	return out, rows.Err()
}
