package event

import (
	"context"
	"time"
)

const (
	routingKeyCustomerCreated = "customer.created"
	routingKeyCustomerUpdated = "customer.updated"
	routingKeyCustomerDeleted = "customer.deleted"
	routingKeyCreditCreated   = "credit.created"
)

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, event CustomerCreatedEvent) error
	PublishCustomerUpdated(ctx context.Context, event CustomerUpdatedEvent) error
	PublishCustomerDeleted(ctx context.Context, event CustomerDeletedEvent) error
	PublishCreditCreated(ctx context.Context, event CreditCreatedEvent) error
}

// CustomerEventPayload never carries the password or its hash.
type CustomerEventPayload struct {
	CustomerID int64     `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Income     string    `json:"income"`
	ZipCode    string    `json:"zipCode"`
	Street     string    `json:"street"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

type CreditEventPayload struct {
	CreditCode           string `json:"creditCode"`
	CreditValue          string `json:"creditValue"`
	DayFirstInstallment  string `json:"dayFirstInstallment"`
	NumberOfInstallments int    `json:"numberOfInstallments"`
	Status               string `json:"status"`
	CustomerID           int64  `json:"customerId"`
}

type CreditCreatedEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Payload   CreditEventPayload `json:"payload"`
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return NoopPublisher{}
}

func (NoopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error { return nil }

func (NoopPublisher) PublishCustomerDeleted(context.Context, CustomerDeletedEvent) error { return nil }

func (NoopPublisher) PublishCreditCreated(context.Context, CreditCreatedEvent) error { return nil }

var _ EventPublisher = NoopPublisher{}
