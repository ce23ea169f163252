package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-system/internal/domain/customer"
	"credit-system/internal/infrastructure/monitoring"
	"credit-system/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const (
	insertCustomerQuery = `
        INSERT INTO customers (first_name, last_name, cpf, email, income, password, zip_code, street, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	updateCustomerQuery = `
        UPDATE customers
        SET first_name = $1,
            last_name = $2,
            income = $3,
            zip_code = $4,
            street = $5,
            updated_at = NOW()
        WHERE id = $6
        RETURNING updated_at`

	findCustomerByIDQuery = `
        SELECT id, first_name, last_name, cpf, email, income, password, zip_code, street, created_at, updated_at
        FROM customers
        WHERE id = $1`

	deleteCustomerQuery = `DELETE FROM customers WHERE id = $1`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.IsNew() {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer monitoring.ObserveDBQuery("insert_customer", time.Now(), &err)
	r.logger.DebugContext(ctx, "Attempting to insert new customer")

	err = r.db.QueryRow(ctx, insertCustomerQuery,
		cust.FirstName,
		cust.LastName,
		cust.CPF,
		cust.Email,
		cust.Income,
		cust.Password,
		cust.Address.ZipCode,
		cust.Address.Street,
	).Scan(
		&cust.ID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.ID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer monitoring.ObserveDBQuery("update_customer", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", cust.ID))
	logCtx.DebugContext(ctx, "Attempting to update customer")

	err = r.db.QueryRow(ctx, updateCustomerQuery,
		cust.FirstName,
		cust.LastName,
		cust.Income,
		cust.Address.ZipCode,
		cust.Address.Street,
		cust.ID,
	).Scan(&cust.UpdatedAt)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		switch {
		case errors.Is(translatedErr, apperrors.ErrNotFound):
			logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
			return apperrors.ErrNotFound
		case errors.Is(translatedErr, apperrors.ErrAlreadyExists):
			logCtx.WarnContext(ctx, "Failed to update customer due to unique constraint violation")
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer monitoring.ObserveDBQuery("find_customer_by_id", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	var c customer.Customer
	err = r.db.QueryRow(ctx, findCustomerByIDQuery, customerID).Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.CPF,
		&c.Email,
		&c.Income,
		&c.Password,
		&c.Address.ZipCode,
		&c.Address.Street,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Customer found successfully")
	return &c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (err error) {
	defer monitoring.ObserveDBQuery("delete_customer", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	cmdTag, err := r.db.Exec(ctx, deleteCustomerQuery, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Delete affected zero rows, customer likely not found")
		return apperrors.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer deleted successfully")
	return nil
}
