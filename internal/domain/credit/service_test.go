package credit_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"credit-system/internal/domain/credit"
	"credit-system/internal/domain/customer"
	"credit-system/internal/event"
	"credit-system/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo      *credit.MockRepository
	customers *credit.MockCustomerService
	pub       *credit.MockEventPublisher
	service   credit.CreditService
}

func setupTest() fixture {
	f := fixture{
		repo:      new(credit.MockRepository),
		customers: new(credit.MockCustomerService),
		pub:       new(credit.MockEventPublisher),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = credit.NewCreditService(f.repo, f.customers, f.pub, logger)
	return f
}

func buildCustomer(id int64) *customer.Customer {
	c := customer.NewCustomer("Gidex", "Santana", "551.927.600-54", "gidex@mail.com",
		decimal.NewFromInt(1000), "hashed", customer.Address{ZipCode: "12375000", Street: "Fool street"})
	c.ID = id
	return c
}

func buildCredit(customerID int64) *credit.Credit {
	return credit.NewCredit(decimal.NewFromInt(500), time.Now().AddDate(0, 1, 0), 5, customerID)
}

func TestCreditService_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := setupTest()
		owner := buildCustomer(1)
		input := buildCredit(1)
		input.Customer = buildCustomer(99)
		input.Status = credit.StatusApproved

		f.customers.On("FindByID", ctx, int64(1)).Return(owner, nil).Once()
		f.repo.On("Save", ctx, mock.MatchedBy(func(c *credit.Credit) bool {
			return c.CustomerID == 1 && c.Customer == owner
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*credit.Credit).ID = 10
		}).Return(nil).Once()
		f.pub.On("PublishCreditCreated", ctx, mock.MatchedBy(func(e event.CreditCreatedEvent) bool {
			return e.Payload.CustomerID == 1 && e.Payload.Status == "IN_PROGRESS" && e.Payload.CreditValue == "500.00"
		})).Return(nil).Once()

		saved, err := f.service.Save(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, int64(10), saved.ID)
		assert.NotEqual(t, uuid.Nil, saved.CreditCode)
		assert.Equal(t, uuid.Version(4), saved.CreditCode.Version())
		assert.Equal(t, credit.StatusInProgress, saved.Status)
		assert.Same(t, owner, saved.Customer, "the supplied customer view is replaced by the resolved owner")
		f.customers.AssertExpectations(t)
		f.repo.AssertExpectations(t)
		f.pub.AssertExpectations(t)
	})

	t.Run("Credit codes differ between saves", func(t *testing.T) {
		f := setupTest()
		owner := buildCustomer(1)

		f.customers.On("FindByID", ctx, int64(1)).Return(owner, nil).Twice()
		f.repo.On("Save", ctx, mock.AnythingOfType("*credit.Credit")).Return(nil).Twice()
		f.pub.On("PublishCreditCreated", ctx, mock.Anything).Return(nil).Twice()

		first, err := f.service.Save(ctx, buildCredit(1))
		require.NoError(t, err)
		second, err := f.service.Save(ctx, buildCredit(1))
		require.NoError(t, err)

		assert.NotEqual(t, first.CreditCode, second.CreditCode)
	})

	t.Run("Error - Unknown customer persists nothing", func(t *testing.T) {
		f := setupTest()
		notFound := apperrors.NewNotFoundError("Id 2 not found")

		f.customers.On("FindByID", ctx, int64(2)).Return(nil, notFound).Once()

		saved, err := f.service.Save(ctx, buildCredit(2))

		assert.Nil(t, saved)
		assert.Equal(t, notFound, err)
		f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.pub.AssertNotCalled(t, "PublishCreditCreated", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository failure", func(t *testing.T) {
		f := setupTest()
		dbError := errors.New("insert failed")

		f.customers.On("FindByID", ctx, int64(1)).Return(buildCustomer(1), nil).Once()
		f.repo.On("Save", ctx, mock.AnythingOfType("*credit.Credit")).Return(dbError).Once()

		saved, err := f.service.Save(ctx, buildCredit(1))

		assert.Nil(t, saved)
		assert.ErrorIs(t, err, dbError)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	})

	t.Run("Error - Repository failure leaves the input untouched", func(t *testing.T) {
		f := setupTest()
		input := buildCredit(1)
		input.Status = credit.StatusApproved
		before := *input

		f.customers.On("FindByID", ctx, int64(1)).Return(buildCustomer(1), nil).Once()
		f.repo.On("Save", ctx, mock.AnythingOfType("*credit.Credit")).Return(errors.New("insert failed")).Once()

		saved, err := f.service.Save(ctx, input)

		require.Error(t, err)
		assert.Nil(t, saved)
		assert.Equal(t, before, *input)
		assert.Equal(t, uuid.Nil, input.CreditCode)
		assert.Nil(t, input.Customer)
	})

	t.Run("Success - Publish failure does not fail the save", func(t *testing.T) {
		f := setupTest()

		f.customers.On("FindByID", ctx, int64(1)).Return(buildCustomer(1), nil).Once()
		f.repo.On("Save", ctx, mock.AnythingOfType("*credit.Credit")).Return(nil).Once()
		f.pub.On("PublishCreditCreated", ctx, mock.Anything).Return(errors.New("broker down")).Once()

		saved, err := f.service.Save(ctx, buildCredit(1))

		assert.NoError(t, err)
		assert.NotNil(t, saved)
	})
}

func TestCreditService_FindAllByCustomerID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Repository order is kept", func(t *testing.T) {
		f := setupTest()
		credits := []*credit.Credit{
			{ID: 1, CreditCode: uuid.New(), CustomerID: 1},
			{ID: 2, CreditCode: uuid.New(), CustomerID: 1},
			{ID: 3, CreditCode: uuid.New(), CustomerID: 1},
		}
		f.repo.On("FindAllByCustomerID", ctx, int64(1)).Return(credits, nil).Once()

		result, err := f.service.FindAllByCustomerID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, credits, result)
	})

	t.Run("Success - Unknown customer yields an empty list", func(t *testing.T) {
		f := setupTest()
		f.repo.On("FindAllByCustomerID", ctx, int64(404)).Return(nil, nil).Once()

		result, err := f.service.FindAllByCustomerID(ctx, 404)

		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.Empty(t, result)
		f.customers.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("Error - Repository failure", func(t *testing.T) {
		f := setupTest()
		dbError := errors.New("query failed")
		f.repo.On("FindAllByCustomerID", ctx, int64(1)).Return(nil, dbError).Once()

		result, err := f.service.FindAllByCustomerID(ctx, 1)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbError)
	})
}

func TestCreditService_FindByCreditCode(t *testing.T) {
	ctx := context.Background()
	code := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := setupTest()
		stored := &credit.Credit{ID: 1, CreditCode: code, CustomerID: 1, Customer: buildCustomer(1), Status: credit.StatusInProgress}
		f.repo.On("FindByCreditCode", ctx, code).Return(stored, nil).Once()

		found, err := f.service.FindByCreditCode(ctx, 1, code)

		require.NoError(t, err)
		assert.Same(t, stored, found)
	})

	t.Run("Error - Unknown code", func(t *testing.T) {
		f := setupTest()
		f.repo.On("FindByCreditCode", ctx, code).Return(nil, apperrors.ErrNotFound).Once()

		found, err := f.service.FindByCreditCode(ctx, 1, code)

		assert.Nil(t, found)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, fmt.Sprintf("Credit code %s not found", code), appErr.Message)
	})

	t.Run("Error - Foreign owner", func(t *testing.T) {
		f := setupTest()
		stored := &credit.Credit{ID: 1, CreditCode: code, CustomerID: 1}
		f.repo.On("FindByCreditCode", ctx, code).Return(stored, nil).Once()

		found, err := f.service.FindByCreditCode(ctx, 2, code)

		assert.Nil(t, found)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.NotErrorIs(t, err, apperrors.ErrNotFound)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, credit.OwnershipViolationMessage, appErr.Message)
		assert.NotContains(t, err.Error(), "1", "the message must not leak the owner")
	})

	t.Run("Error - Repository failure", func(t *testing.T) {
		f := setupTest()
		dbError := errors.New("timeout")
		f.repo.On("FindByCreditCode", ctx, code).Return(nil, dbError).Once()

		_, err := f.service.FindByCreditCode(ctx, 1, code)

		assert.ErrorIs(t, err, dbError)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	})
}

func TestNewCredit(t *testing.T) {
	day := time.Date(2031, time.March, 4, 15, 30, 0, 0, time.UTC)

	c := credit.NewCredit(decimal.RequireFromString("1500.50"), day, 12, 3)

	assert.Equal(t, credit.StatusInProgress, c.Status)
	assert.Equal(t, time.Date(2031, time.March, 4, 0, 0, 0, 0, time.UTC), c.DayFirstInstallment)
	assert.Equal(t, 12, c.NumberOfInstallments)
	assert.True(t, c.BelongsTo(3))
	assert.False(t, c.BelongsTo(4))
	assert.True(t, credit.StatusReject.Valid())
	assert.False(t, credit.Status("PAID").Valid())
}
