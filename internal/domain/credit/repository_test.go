package credit

import (
	"context"

	"credit-system/internal/domain/customer"
	"credit-system/internal/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, credit *Credit) error {
	ret := _m.Called(ctx, credit)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Credit) error); ok {
		r0 = rf(ctx, credit)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByCreditCode(ctx context.Context, code uuid.UUID) (*Credit, error) {
	ret := _m.Called(ctx, code)

	var r0 *Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Credit)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error) {
	ret := _m.Called(ctx, customerID)

	var r0 []*Credit
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Credit)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	ret := _m.Called(ctx)

	var r0 map[Status]int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(map[Status]int64)
	}

	return r0, ret.Error(1)
}

var _ Repository = (*MockRepository)(nil)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) Save(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	ret := _m.Called(ctx, c)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Delete(ctx context.Context, customerID int64) error {
	return _m.Called(ctx, customerID).Error(0)
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishCustomerCreated(ctx context.Context, evt event.CustomerCreatedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerUpdated(ctx context.Context, evt event.CustomerUpdatedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishCustomerDeleted(ctx context.Context, evt event.CustomerDeletedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishCreditCreated(ctx context.Context, evt event.CreditCreatedEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

var _ event.EventPublisher = (*MockEventPublisher)(nil)
