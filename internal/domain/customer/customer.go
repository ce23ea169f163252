package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Address struct {
	ZipCode string `json:"zipCode"`
	Street  string `json:"street"`
}

type Customer struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	CPF       string          `json:"cpf"`
	Email     string          `json:"email"`
	Income    decimal.Decimal `json:"income"`
	Password  string          `json:"-"`
	Address   Address         `json:"address"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Update holds the fields a customer may change after registration.
type Update struct {
	FirstName string
	LastName  string
	Income    decimal.Decimal
	ZipCode   string
	Street    string
}

func NewCustomer(firstName, lastName, cpf, email string, income decimal.Decimal, password string, address Address) *Customer {
	return &Customer{
		FirstName: firstName,
		LastName:  lastName,
		CPF:       cpf,
		Email:     email,
		Income:    income,
		Password:  password,
		Address:   address,
	}
}

func (c *Customer) IsNew() bool {
	return c.ID == 0
}

// ApplyUpdate overwrites the mutable fields. CPF, email and password are left as they are.
func (c *Customer) ApplyUpdate(u Update) {
	c.FirstName = u.FirstName
	c.LastName = u.LastName
	c.Income = u.Income
	c.Address = Address{ZipCode: u.ZipCode, Street: u.Street}
	c.UpdatedAt = time.Now()
}
