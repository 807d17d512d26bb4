package patient

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*Patient, error)
}
