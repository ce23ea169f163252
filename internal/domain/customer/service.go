package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-system/internal/event"
	"credit-system/internal/infrastructure/monitoring"
	"credit-system/internal/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
)

const customerNotFound = "Customer not found by repository"

type CustomerService interface {
	Save(ctx context.Context, c *Customer) (*Customer, error)
	FindByID(ctx context.Context, customerID int64) (*Customer, error)
	Delete(ctx context.Context, customerID int64) error
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo     CustomerRepository
	pub      event.EventPublisher
	logger   *slog.Logger
	hashCost int
}

type Option func(*customerService)

// WithPasswordCost overrides the bcrypt cost used when hashing new passwords.
func WithPasswordCost(cost int) Option {
	return func(s *customerService) {
		s.hashCost = cost
	}
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger, opts ...Option) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		eventPublisher = event.NewNoopPublisher()
	}

	s := &customerService{
		repo:     repo,
		pub:      eventPublisher,
		logger:   logger.With(slog.String("component", "customerService")),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func NewCustomerEventPayload(c *Customer) event.CustomerEventPayload {
	if c == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Income:     c.Income.StringFixed(2),
		ZipCode:    c.Address.ZipCode,
		Street:     c.Address.Street,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (s *customerService) Save(ctx context.Context, c *Customer) (*Customer, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if c.IsNew() {
		return s.create(ctx, c)
	}
	return s.update(ctx, c)
}

func (s *customerService) create(ctx context.Context, c *Customer) (*Customer, error) {
	logger := s.logger.With(slog.String("email", c.Email))
	logger.InfoContext(ctx, "Attempting to register new customer")

	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.hashCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash customer password", slog.Any("error", err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	c.Password = string(hash)

	if err := s.repo.Save(ctx, c); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Customer conflicts with an existing registration", slog.Any("error", err))
			return nil, err
		}
		logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}

	logger = logger.With(slog.Int64("customerID", c.ID))
	monitoring.RecordCustomerCreated()

	createdEvent := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(c),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, createdEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return c, nil
}

func (s *customerService) update(ctx context.Context, c *Customer) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", c.ID))
	logger.InfoContext(ctx, "Attempting to update customer")

	if err := s.repo.Save(ctx, c); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			logger.WarnContext(ctx, "Customer disappeared before update completed")
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Id %d not found", c.ID))
		case errors.Is(err, apperrors.ErrAlreadyExists):
			logger.WarnContext(ctx, "Customer update conflicts with an existing registration", slog.Any("error", err))
			return nil, err
		}
		logger.ErrorContext(ctx, "Repository failed to save updated customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to update customer %d: %w", c.ID, err)
	}

	updatedEvent := event.CustomerUpdatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(c),
	}
	if pubErr := s.pub.PublishCustomerUpdated(ctx, updatedEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully updated customer")
	return c, nil
}

func (s *customerService) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))

	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, customerNotFound)
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Id %d not found", customerID))
		}
		logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logger.DebugContext(ctx, "Successfully retrieved customer")
	return c, nil
}

func (s *customerService) Delete(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	if _, err := s.FindByID(ctx, customerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Customer disappeared before delete completed")
			return apperrors.NewNotFoundError(fmt.Sprintf("Id %d not found", customerID))
		}
		logger.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}
	monitoring.RecordCustomerDeleted()

	deletedEvent := event.CustomerDeletedEvent{Timestamp: time.Now(), CustomerID: customerID}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}
