package health

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serena/serena/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type eventRepoPG struct{ pool *pgxpool.Pool }

func NewEventRepoPG(pool *pgxpool.Pool) EventRepository {
	return &eventRepoPG{pool: pool}
}

func (r *eventRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const eventCols = `id, patient_id, message_id, category, subcategory, value, rating, confidence, original_text, edited, recorded_at, updated_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.PatientID, &e.MessageID, &e.Category, &e.Subcategory, &e.Value,
		&e.Rating, &e.Confidence, &e.OriginalText, &e.Edited, &e.RecordedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *eventRepoPG) Create(ctx context.Context, e *Event) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO health_events (patient_id, message_id, category, subcategory, value, rating, confidence, original_text, edited, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, updated_at`,
		e.PatientID, e.MessageID, e.Category, e.Subcategory, e.Value, e.Rating, e.Confidence,
		e.OriginalText, e.Edited, e.RecordedAt,
	).Scan(&e.ID, &e.UpdatedAt)
}

func (r *eventRepoPG) GetByID(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(r.conn(ctx).QueryRow(ctx, `SELECT `+eventCols+` FROM health_events WHERE id = $1`, id))
}

func (r *eventRepoPG) Update(ctx context.Context, e *Event) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE health_events SET value=$2, rating=$3, confidence=$4, edited=$5, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Value, e.Rating, e.Confidence, e.Edited)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *eventRepoPG) List(ctx context.Context, f Filter, limit int) ([]*Event, error) {
	where := []string{"patient_id = $1", "recorded_at >= $2", "recorded_at < $3"}
	args := []interface{}{f.PatientID, f.From, f.To}
	idx := 4
	if f.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", idx))
		args = append(args, f.Category)
		idx++
	}
	if f.Subcategory != "" {
		where = append(where, fmt.Sprintf("subcategory = $%d", idx))
		args = append(args, f.Subcategory)
		idx++
	}
	query := `SELECT ` + eventCols + ` FROM health_events WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY recorded_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, limit)
	}

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
