package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"credit-system/internal/domain/credit"
	"credit-system/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var creditColumns = []string{"id", "credit_code", "credit_value", "day_first_installment", "number_of_installments", "status", "customer_id", "created_at"}

func setupCreditRepo(t *testing.T) (context.Context, *CreditRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewCreditRepository(mockPool, logger), mockPool
}

func TestCreditRepository_Save(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()
	day := time.Date(2031, time.January, 10, 0, 0, 0, 0, time.UTC)
	cr := credit.NewCredit(decimal.NewFromInt(500), day, 5, 1)
	cr.CreditCode = uuid.New()
	now := time.Now()

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCreditQuery)).WithArgs(
		cr.CreditCode,
		cr.CreditValue,
		day,
		5,
		"IN_PROGRESS",
		int64(1),
	).WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), now))

	err := repo.Save(ctx, cr)

	require.NoError(t, err)
	assert.Equal(t, int64(11), cr.ID)
	assert.Equal(t, now, cr.CreatedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreditRepository_SaveDuplicateCode(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()
	cr := credit.NewCredit(decimal.NewFromInt(500), time.Now(), 5, 1)
	cr.CreditCode = uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCreditQuery)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "credits_credit_code_key"})

	err := repo.Save(ctx, cr)

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCreditRepository_SaveMissingOwner(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()
	cr := credit.NewCredit(decimal.NewFromInt(500), time.Now(), 5, 77)
	cr.CreditCode = uuid.New()

	mockPool.ExpectQuery(regexp.QuoteMeta(insertCreditQuery)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "credits_customer_id_fkey"})

	err := repo.Save(ctx, cr)

	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestCreditRepository_FindByCreditCode(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()
	code := uuid.New()
	day := time.Date(2031, time.January, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	columns := append(append([]string{}, creditColumns...), "first_name", "last_name", "email", "income")

	mockPool.ExpectQuery(regexp.QuoteMeta(findCreditByCodeQuery)).WithArgs(code).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			int64(3), code, decimal.NewFromInt(500), day, 5, credit.StatusInProgress, int64(1), now,
			"Gidex", "Santana", "gidex@mail.com", decimal.NewFromInt(1000),
		))

	cr, err := repo.FindByCreditCode(ctx, code)

	require.NoError(t, err)
	assert.Equal(t, int64(3), cr.ID)
	assert.Equal(t, code, cr.CreditCode)
	assert.Equal(t, credit.StatusInProgress, cr.Status)
	assert.Equal(t, 5, cr.NumberOfInstallments)
	require.NotNil(t, cr.Customer)
	assert.Equal(t, int64(1), cr.Customer.ID)
	assert.Equal(t, "gidex@mail.com", cr.Customer.Email)
	assert.True(t, decimal.NewFromInt(1000).Equal(cr.Customer.Income))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreditRepository_FindByCreditCodeNotFound(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()
	code := uuid.New()
	columns := append(append([]string{}, creditColumns...), "first_name", "last_name", "email", "income")

	mockPool.ExpectQuery(regexp.QuoteMeta(findCreditByCodeQuery)).WithArgs(code).
		WillReturnRows(pgxmock.NewRows(columns))

	cr, err := repo.FindByCreditCode(ctx, code)

	assert.Nil(t, cr)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreditRepository_FindAllByCustomerID(t *testing.T) {
	t.Run("returns credits in id order", func(t *testing.T) {
		ctx, repo, mockPool := setupCreditRepo(t)
		defer mockPool.Close()
		day := time.Date(2031, time.January, 10, 0, 0, 0, 0, time.UTC)
		now := time.Now()
		first, second := uuid.New(), uuid.New()

		mockPool.ExpectQuery(regexp.QuoteMeta(findCreditsByCustomerQuery)).WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(creditColumns).
				AddRow(int64(1), first, decimal.NewFromInt(500), day, 5, credit.StatusInProgress, int64(1), now).
				AddRow(int64(2), second, decimal.NewFromInt(900), day, 12, credit.StatusApproved, int64(1), now))

		credits, err := repo.FindAllByCustomerID(ctx, 1)

		require.NoError(t, err)
		require.Len(t, credits, 2)
		assert.Equal(t, first, credits[0].CreditCode)
		assert.Equal(t, second, credits[1].CreditCode)
		assert.Equal(t, credit.StatusApproved, credits[1].Status)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("no rows gives empty slice", func(t *testing.T) {
		ctx, repo, mockPool := setupCreditRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(findCreditsByCustomerQuery)).WithArgs(int64(404)).
			WillReturnRows(pgxmock.NewRows(creditColumns))

		credits, err := repo.FindAllByCustomerID(ctx, 404)

		require.NoError(t, err)
		assert.NotNil(t, credits)
		assert.Empty(t, credits)
	})

	t.Run("query failure", func(t *testing.T) {
		ctx, repo, mockPool := setupCreditRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(findCreditsByCustomerQuery)).WithArgs(int64(1)).
			WillReturnError(errors.New("boom"))

		credits, err := repo.FindAllByCustomerID(ctx, 1)

		assert.Nil(t, credits)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestCreditRepository_CountByStatus(t *testing.T) {
	ctx, repo, mockPool := setupCreditRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(countCreditsByStatusQuery)).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(credit.StatusInProgress, int64(4)).
			AddRow(credit.StatusReject, int64(1)))

	counts, err := repo.CountByStatus(ctx)

	require.NoError(t, err)
	assert.Equal(t, map[credit.Status]int64{
		credit.StatusInProgress: 4,
		credit.StatusApproved:   0,
		credit.StatusReject:     1,
	}, counts)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
