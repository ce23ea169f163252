package dto

import (
	"net/mail"
	"strings"

	"credit-system/internal/domain/customer"
	"credit-system/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	CPF       string           `json:"cpf"`
	Email     string           `json:"email"`
	Income    *decimal.Decimal `json:"income" swaggertype:"string"`
	Password  string           `json:"password"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

func (r *CustomerRequest) Validate() error {
	var v apperrors.ValidationErrors

	if strings.TrimSpace(r.FirstName) == "" {
		v.Add("firstName", "First Name should not be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		v.Add("lastName", "Last Name should not be empty")
	}
	switch {
	case strings.TrimSpace(r.CPF) == "":
		v.Add("cpf", "CPF Name should not be empty")
	case !customer.ValidCPF(r.CPF):
		v.Add("cpf", "Invalid CPF")
	}
	switch {
	case strings.TrimSpace(r.Email) == "":
		v.Add("email", "Email Name should not be empty")
	case !validEmail(r.Email):
		v.Add("email", "Invalid Email")
	}
	switch {
	case r.Income == nil:
		v.Add("income", "Income should not be null")
	case r.Income.IsNegative():
		v.Add("income", "Income should not be negative")
	}
	if strings.TrimSpace(r.Password) == "" {
		v.Add("password", "Password Name should not be empty")
	}
	if strings.TrimSpace(r.ZipCode) == "" {
		v.Add("zipCode", "Zip Code Name should not be empty")
	}
	if strings.TrimSpace(r.Street) == "" {
		v.Add("street", "Street Name should not be empty")
	}

	return v.Err()
}

// ToDomain expects a request that passed Validate.
func (r *CustomerRequest) ToDomain() *customer.Customer {
	return customer.NewCustomer(
		r.FirstName,
		r.LastName,
		r.CPF,
		r.Email,
		*r.Income,
		r.Password,
		customer.Address{ZipCode: r.ZipCode, Street: r.Street},
	)
}

type CustomerUpdateRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Income    *decimal.Decimal `json:"income" swaggertype:"string"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

func (r *CustomerUpdateRequest) Validate() error {
	var v apperrors.ValidationErrors

	if strings.TrimSpace(r.FirstName) == "" {
		v.Add("firstName", "First Name should not be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		v.Add("lastName", "Last Name should not be empty")
	}
	switch {
	case r.Income == nil:
		v.Add("income", "Income should not be null")
	case r.Income.IsNegative():
		v.Add("income", "Income should not be negative")
	}
	if strings.TrimSpace(r.ZipCode) == "" {
		v.Add("zipCode", "Zip Code Name should not be empty")
	}
	if strings.TrimSpace(r.Street) == "" {
		v.Add("street", "Street Name should not be empty")
	}

	return v.Err()
}

func (r *CustomerUpdateRequest) ToUpdate() customer.Update {
	return customer.Update{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Income:    *r.Income,
		ZipCode:   r.ZipCode,
		Street:    r.Street,
	}
}

type CustomerView struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Income    string `json:"income"`
	ZipCode   string `json:"zipCode"`
	Street    string `json:"street"`
}

func NewCustomerView(cust *customer.Customer) CustomerView {
	if cust == nil {
		return CustomerView{}
	}
	return CustomerView{
		ID:        cust.ID,
		FirstName: cust.FirstName,
		LastName:  cust.LastName,
		CPF:       cust.CPF,
		Email:     cust.Email,
		Income:    formatMoney(cust.Income),
		ZipCode:   cust.Address.ZipCode,
		Street:    cust.Address.Street,
	}
}

// validEmail accepts a bare addr-spec only; display names like "Bob <b@x.io>" are rejected.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(addr.Address, "@")
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
