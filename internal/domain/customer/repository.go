package customer

import (
	"context"
)

type CustomerRepository interface {
	// Save inserts the customer when ID is zero and updates its mutable columns otherwise.
	// ID and the timestamps are written back into c. Unique violations are reported
	// as apperrors.ErrAlreadyExists.
	Save(ctx context.Context, c *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	Delete(ctx context.Context, customerID int64) error
}
