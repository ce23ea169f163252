package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-system/internal/domain/credit"
	"credit-system/internal/domain/customer"
	"credit-system/internal/infrastructure/monitoring"
	"credit-system/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	insertCreditQuery = `
        INSERT INTO credits (credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at`

	findCreditByCodeQuery = `
        SELECT cr.id, cr.credit_code, cr.credit_value, cr.day_first_installment, cr.number_of_installments, cr.status, cr.customer_id, cr.created_at,
               c.first_name, c.last_name, c.email, c.income
        FROM credits cr
        JOIN customers c ON c.id = cr.customer_id
        WHERE cr.credit_code = $1`

	findCreditsByCustomerQuery = `
        SELECT id, credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at
        FROM credits
        WHERE customer_id = $1
        ORDER BY id ASC`

	countCreditsByStatusQuery = `SELECT status, COUNT(*) FROM credits GROUP BY status`
)

type CreditRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ credit.Repository = (*CreditRepository)(nil)

func NewCreditRepository(db DBPool, logger *slog.Logger) *CreditRepository {
	if db == nil {
		panic("DBPool cannot be nil for CreditRepository")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditRepository{
		db:     db,
		logger: logger.With("component", "CreditRepository"),
	}
}

func (r *CreditRepository) Save(ctx context.Context, cr *credit.Credit) (err error) {
	if cr == nil {
		return fmt.Errorf("%w: credit cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer monitoring.ObserveDBQuery("insert_credit", time.Now(), &err)
	logCtx := r.logger.With(slog.String("creditCode", cr.CreditCode.String()), slog.Int64("customerID", cr.CustomerID))

	err = r.db.QueryRow(ctx, insertCreditQuery,
		cr.CreditCode,
		cr.CreditValue,
		cr.DayFirstInstallment,
		cr.NumberOfInstallments,
		string(cr.Status),
		cr.CustomerID,
	).Scan(&cr.ID, &cr.CreatedAt)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			return translatedErr
		}
		logCtx.ErrorContext(ctx, "Failed to insert credit", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert credit: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Credit inserted successfully", slog.Int64("creditID", cr.ID))
	return nil
}

func (r *CreditRepository) FindByCreditCode(ctx context.Context, code uuid.UUID) (cr *credit.Credit, err error) {
	defer monitoring.ObserveDBQuery("find_credit_by_code", time.Now(), &err)
	logCtx := r.logger.With(slog.String("creditCode", code.String()))

	var found credit.Credit
	owner := &customer.Customer{}
	err = r.db.QueryRow(ctx, findCreditByCodeQuery, code).Scan(
		&found.ID,
		&found.CreditCode,
		&found.CreditValue,
		&found.DayFirstInstallment,
		&found.NumberOfInstallments,
		&found.Status,
		&found.CustomerID,
		&found.CreatedAt,
		&owner.FirstName,
		&owner.LastName,
		&owner.Email,
		&owner.Income,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Credit not found")
			return nil, apperrors.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan credit by code", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get credit by code: %w", apperrors.ErrDatabase, err)
	}

	owner.ID = found.CustomerID
	found.Customer = owner
	return &found, nil
}

func (r *CreditRepository) FindAllByCustomerID(ctx context.Context, customerID int64) (credits []*credit.Credit, err error) {
	defer monitoring.ObserveDBQuery("find_credits_by_customer", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	rows, err := r.db.Query(ctx, findCreditsByCustomerQuery, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query credits", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query credits: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	credits = make([]*credit.Credit, 0)
	for rows.Next() {
		var cr credit.Credit
		if err = rows.Scan(
			&cr.ID,
			&cr.CreditCode,
			&cr.CreditValue,
			&cr.DayFirstInstallment,
			&cr.NumberOfInstallments,
			&cr.Status,
			&cr.CustomerID,
			&cr.CreatedAt,
		); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan credit row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan credit row: %w", apperrors.ErrDatabase, err)
		}
		credits = append(credits, &cr)
	}

	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating credit rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating credit rows: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Finished finding credits", slog.Int("count", len(credits)))
	return credits, nil
}

func (r *CreditRepository) CountByStatus(ctx context.Context) (counts map[credit.Status]int64, err error) {
	defer monitoring.ObserveDBQuery("count_credits_by_status", time.Now(), &err)

	rows, err := r.db.Query(ctx, countCreditsByStatusQuery)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count credits by status", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to count credits: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	counts = map[credit.Status]int64{
		credit.StatusInProgress: 0,
		credit.StatusApproved:   0,
		credit.StatusReject:     0,
	}
	for rows.Next() {
		var status credit.Status
		var count int64
		if err = rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: failed to scan credit count: %w", apperrors.ErrDatabase, err)
		}
		counts[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating credit counts: %w", apperrors.ErrDatabase, err)
	}

	return counts, nil
}
