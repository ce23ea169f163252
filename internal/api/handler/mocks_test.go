package handler_test

import (
	"context"

	"credit-system/internal/domain/credit"
	"credit-system/internal/domain/customer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) Save(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, cust)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, *customer.Customer) *customer.Customer); ok {
		r0 = rf(ctx, cust)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, id)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Delete(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

type MockCreditService struct {
	mock.Mock
}

func (_m *MockCreditService) Save(ctx context.Context, cr *credit.Credit) (*credit.Credit, error) {
	ret := _m.Called(ctx, cr)

	var r0 *credit.Credit
	if rf, ok := ret.Get(0).(func(context.Context, *credit.Credit) *credit.Credit); ok {
		r0 = rf(ctx, cr)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}

	return r0, ret.Error(1)
}

func (_m *MockCreditService) FindAllByCustomerID(ctx context.Context, customerID int64) ([]*credit.Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*credit.Credit)
	}

	return r0, ret.Error(1)
}

func (_m *MockCreditService) FindByCreditCode(ctx context.Context, customerID int64, code uuid.UUID) (*credit.Credit, error) {
	ret := _m.Called(ctx, customerID, code)

	var r0 *credit.Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*credit.Credit)
	}

	return r0, ret.Error(1)
}

var (
	_ customer.CustomerService = (*MockCustomerService)(nil)
	_ credit.CreditService     = (*MockCreditService)(nil)
)
