package credit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-system/internal/domain/customer"
	"credit-system/internal/event"
	"credit-system/internal/infrastructure/monitoring"
	"credit-system/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// OwnershipViolationMessage must not reveal who owns the credit.
const OwnershipViolationMessage = "Contact admin"

type CreditService interface {
	Save(ctx context.Context, credit *Credit) (*Credit, error)
	FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error)
	FindByCreditCode(ctx context.Context, customerID int64, code uuid.UUID) (*Credit, error)
}

type creditService struct {
	repo      Repository
	customers customer.CustomerService
	pub       event.EventPublisher
	newCode   func() uuid.UUID
	logger    *slog.Logger
}

var _ CreditService = (*creditService)(nil)

func NewCreditService(repo Repository, customers customer.CustomerService, eventPublisher event.EventPublisher, logger *slog.Logger) CreditService {
	if repo == nil {
		panic("credit repository cannot be nil")
	}
	if customers == nil {
		panic("customer service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if eventPublisher == nil {
		eventPublisher = event.NewNoopPublisher()
	}

	return &creditService{
		repo:      repo,
		customers: customers,
		pub:       eventPublisher,
		newCode:   uuid.New,
		logger:    logger.With(slog.String("component", "creditService")),
	}
}

func (s *creditService) Save(ctx context.Context, credit *Credit) (*Credit, error) {
	if credit == nil {
		return nil, fmt.Errorf("%w: credit cannot be nil", apperrors.ErrInvalidArgument)
	}
	logger := s.logger.With(slog.Int64("customerID", credit.CustomerID))
	logger.InfoContext(ctx, "Attempting to register credit request")

	owner, err := s.customers.FindByID(ctx, credit.CustomerID)
	if err != nil {
		logger.WarnContext(ctx, "Credit owner could not be resolved", slog.Any("error", err))
		return nil, err
	}

	pending := *credit
	pending.Customer = owner
	pending.CreditCode = s.newCode()
	pending.Status = StatusInProgress
	pending.DayFirstInstallment = DateOf(credit.DayFirstInstallment)
	credit = &pending

	logger = logger.With(slog.String("creditCode", credit.CreditCode.String()))
	if err := s.repo.Save(ctx, credit); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Credit code collision", slog.Any("error", err))
			return nil, err
		}
		logger.ErrorContext(ctx, "Repository failed to save credit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save credit for customer %d: %w", credit.CustomerID, err)
	}
	monitoring.RecordCreditCreated()

	createdEvent := event.CreditCreatedEvent{
		Timestamp: time.Now(),
		Payload: event.CreditEventPayload{
			CreditCode:           credit.CreditCode.String(),
			CreditValue:          credit.CreditValue.StringFixed(2),
			DayFirstInstallment:  credit.DayFirstInstallment.Format(time.DateOnly),
			NumberOfInstallments: credit.NumberOfInstallments,
			Status:               string(credit.Status),
			CustomerID:           credit.CustomerID,
		},
	}
	if pubErr := s.pub.PublishCreditCreated(ctx, createdEvent); pubErr != nil {
		logger.ErrorContext(ctx, "Credit created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully registered credit")
	return credit, nil
}

func (s *creditService) FindAllByCustomerID(ctx context.Context, customerID int64) ([]*Credit, error) {
	credits, err := s.repo.FindAllByCustomerID(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing credits", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list credits for customer %d: %w", customerID, err)
	}
	if credits == nil {
		credits = []*Credit{}
	}
	return credits, nil
}

func (s *creditService) FindByCreditCode(ctx context.Context, customerID int64, code uuid.UUID) (*Credit, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID), slog.String("creditCode", code.String()))

	credit, err := s.repo.FindByCreditCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.WarnContext(ctx, "Credit code not found by repository")
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("Credit code %s not found", code))
		}
		logger.ErrorContext(ctx, "Repository error finding credit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to find credit %s: %w", code, err)
	}

	if !credit.BelongsTo(customerID) {
		logger.WarnContext(ctx, "Credit requested by a customer that does not own it", slog.Int64("ownerID", credit.CustomerID))
		return nil, apperrors.NewOwnershipError(OwnershipViolationMessage)
	}

	return credit, nil
}
