package patient

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Age        *int      `db:"age" json:"age,omitempty"`
	Conditions *string   `db:"conditions" json:"conditions,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ListItem is the reduced shape used by patient selectors.
type ListItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
