package credit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, credit *Credit) error

	// FindByCreditCode returns apperrors.ErrNotFound when no credit carries the code.
	FindByCreditCode(ctx context.Context, code uuid.UUID) (*Credit, error)

	FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error)

	CountByStatus(ctx context.Context) (map[Status]int64, error)
}
