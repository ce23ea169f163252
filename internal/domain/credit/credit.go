package credit

import (
	"time"

	"credit-system/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MinInstallments = 3
	MaxInstallments = 12
)

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusApproved   Status = "APPROVED"
	StatusReject     Status = "REJECT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusApproved, StatusReject:
		return true
	}
	return false
}

type Credit struct {
	ID                   int64
	CreditCode           uuid.UUID
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	Status               Status
	CustomerID           int64

	// Customer is a resolved view of the owner. It is never persisted through the credit.
	Customer  *customer.Customer
	CreatedAt time.Time
}

func NewCredit(value decimal.Decimal, dayFirstInstallment time.Time, installments int, customerID int64) *Credit {
	return &Credit{
		CreditValue:          value,
		DayFirstInstallment:  DateOf(dayFirstInstallment),
		NumberOfInstallments: installments,
		Status:               StatusInProgress,
		CustomerID:           customerID,
	}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BelongsTo reports whether customerID owns the credit.
func (c *Credit) BelongsTo(customerID int64) bool {
	return c.CustomerID == customerID
}
