package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"credit-system/internal/api/handler/dto"
	"credit-system/internal/domain/credit"
	"credit-system/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreditHandler struct {
	service credit.CreditService
	logger  *slog.Logger
	now     func() time.Time
}

func NewCreditHandler(s credit.CreditService, l *slog.Logger) *CreditHandler {
	if s == nil {
		panic("credit service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CreditHandler{
		service: s,
		logger:  l.With("component", "CreditHandler"),
		now:     time.Now,
	}
}

// CreateCredit handles POST /api/credits
// @Summary Register a credit application
// @Description Registers a credit for an existing customer. The credit code is generated and the status starts as IN_PROGRESS.
// @Tags Credits
// @Accept json
// @Produce json
// @Param request body dto.CreditRequest true "Credit application payload"
// @Success 201 {object} dto.CreditView "Credit saved"
// @Failure 400 {object} dto.ExceptionDetails "Invalid payload or unknown customer"
// @Failure 409 {object} dto.ExceptionDetails "Conflict"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/credits [post]
// @Security BearerAuth
func (h *CreditHandler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreditRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(h.now()); err != nil {
		h.logger.WarnContext(r.Context(), "Credit request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	saved, err := h.service.Save(r.Context(), req.ToDomain())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to save credit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Credit saved",
		slog.String("creditCode", saved.CreditCode.String()),
		slog.Int64("customerID", saved.CustomerID))
	respondJSON(w, http.StatusCreated, dto.NewCreditView(saved))
}

// ListCredits handles GET /api/credits?customerId=
// @Summary List a customer's credits
// @Tags Credits
// @Produce json
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {array} dto.SimpleCreditView
// @Failure 400 {object} dto.ExceptionDetails "Invalid customer id"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/credits [get]
// @Security BearerAuth
func (h *CreditHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseID(r.URL.Query().Get("customerId"), "customerId")
	if err != nil {
		respondError(w, err)
		return
	}

	credits, err := h.service.FindAllByCustomerID(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list credits", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSimpleCreditViews(credits))
}

// GetCredit handles GET /api/credits/{creditCode}?customerId=
// @Summary Find a credit by code
// @Description Returns the credit only when it belongs to the given customer.
// @Tags Credits
// @Produce json
// @Param creditCode path string true "Credit code (UUID)"
// @Param customerId query int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CreditView
// @Failure 400 {object} dto.ExceptionDetails "Invalid input or unknown credit code"
// @Failure 409 {object} dto.ExceptionDetails "Credit belongs to another customer"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/credits/{creditCode} [get]
// @Security BearerAuth
func (h *CreditHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseID(r.URL.Query().Get("customerId"), "customerId")
	if err != nil {
		respondError(w, err)
		return
	}
	rawCode := chi.URLParam(r, "creditCode")
	code, err := parseCreditCode(rawCode)
	if err != nil {
		respondError(w, apperrors.NewValidationError("creditCode", fmt.Sprintf("invalid creditCode: %s", rawCode)))
		return
	}

	cr, err := h.service.FindByCreditCode(r.Context(), customerID, code)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to find credit", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCreditView(cr))
}

// parseCreditCode accepts only the canonical 36 character hyphenated form.
func parseCreditCode(raw string) (uuid.UUID, error) {
	code, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if code.String() != strings.ToLower(raw) {
		return uuid.Nil, fmt.Errorf("credit code %q is not in canonical form", raw)
	}
	return code, nil
}
