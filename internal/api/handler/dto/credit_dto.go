package dto

import (
	"time"

	"credit-system/internal/domain/credit"
	"credit-system/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of every calendar date in the API.
const DateLayout = time.DateOnly

// moneyScale matches the NUMERIC(15, 2) money columns.
const moneyScale = 2

type CreditRequest struct {
	CreditValue          *decimal.Decimal `json:"creditValue" swaggertype:"string" example:"1500.00"`
	FirstInstallmentDay  string           `json:"firstInstallmentDay" example:"2031-01-10"`
	NumberOfInstallments int              `json:"numberOfInstallments" example:"5"`
	CustomerID           *int64           `json:"customerId" example:"1"`
}

// Validate checks the request against the calendar day of now.
func (r *CreditRequest) Validate(now time.Time) error {
	var v apperrors.ValidationErrors

	switch {
	case r.CreditValue == nil:
		v.Add("creditValue", "Credit Value should not be null")
	case !r.CreditValue.IsPositive():
		v.Add("creditValue", "Credit Value should be greater than zero")
	case !r.CreditValue.Equal(r.CreditValue.Round(moneyScale)):
		v.Add("creditValue", "Credit Value should have at most 2 decimal places")
	}

	day, err := time.Parse(DateLayout, r.FirstInstallmentDay)
	if err != nil || !day.After(credit.DateOf(now)) {
		v.Add("firstInstallmentDay", "Invalid date for the first installment")
	}

	if r.NumberOfInstallments < credit.MinInstallments {
		v.Add("numberOfInstallments", "The number of installments should be greater than 3")
	}
	if r.NumberOfInstallments > credit.MaxInstallments {
		v.Add("numberOfInstallments", "The number of installments should be lower than 12")
	}

	if r.CustomerID == nil {
		v.Add("customerId", "Customer id should not be null")
	}

	return v.Err()
}

// ToDomain expects a request that passed Validate.
func (r *CreditRequest) ToDomain() *credit.Credit {
	day, _ := time.Parse(DateLayout, r.FirstInstallmentDay)
	return credit.NewCredit(*r.CreditValue, day, r.NumberOfInstallments, *r.CustomerID)
}

type CreditView struct {
	CreditCode           string `json:"creditCode"`
	CreditValue          string `json:"creditValue"`
	DayFirstInstallment  string `json:"dayFirstInstallment"`
	NumberOfInstallments int    `json:"numberOfInstallments"`
	Status               string `json:"status"`
	EmailCustomer        string `json:"emailCustomer,omitempty"`
	IncomeCustomer       string `json:"incomeCustomer,omitempty"`
}

func NewCreditView(cr *credit.Credit) CreditView {
	if cr == nil {
		return CreditView{}
	}
	view := CreditView{
		CreditCode:           cr.CreditCode.String(),
		CreditValue:          formatMoney(cr.CreditValue),
		DayFirstInstallment:  cr.DayFirstInstallment.Format(DateLayout),
		NumberOfInstallments: cr.NumberOfInstallments,
		Status:               string(cr.Status),
	}
	if cr.Customer != nil {
		view.EmailCustomer = cr.Customer.Email
		view.IncomeCustomer = formatMoney(cr.Customer.Income)
	}
	return view
}

type SimpleCreditView struct {
	CreditCode           string `json:"creditCode"`
	CreditValue          string `json:"creditValue"`
	NumberOfInstallments int    `json:"numberOfInstallments"`
}

func NewSimpleCreditViews(credits []*credit.Credit) []SimpleCreditView {
	views := make([]SimpleCreditView, 0, len(credits))
	for _, cr := range credits {
		views = append(views, SimpleCreditView{
			CreditCode:           cr.CreditCode.String(),
			CreditValue:          formatMoney(cr.CreditValue),
			NumberOfInstallments: cr.NumberOfInstallments,
		})
	}
	return views
}
