package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"credit-system/internal/api/handler/dto"
	"credit-system/internal/domain/customer"
	"credit-system/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		logger:  l.With("component", "CustomerHandler"),
	}
}

func (h *CustomerHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if apperrors.KindOf(err) != apperrors.KindInternal {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}

// CreateCustomer handles POST /api/customers
// @Summary Register a customer
// @Description Registers a customer. The password is stored hashed and never returned.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer registration payload"
// @Success 201 {object} dto.CustomerView "Customer saved"
// @Failure 400 {object} dto.ExceptionDetails "Invalid payload"
// @Failure 409 {object} dto.ExceptionDetails "CPF or email already registered"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Customer request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	saved, err := h.service.Save(r.Context(), req.ToDomain())
	if err != nil {
		h.logServiceError(r, "Service failed to save customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer saved", slog.Int64("customerID", saved.ID))
	respondJSON(w, http.StatusCreated, dto.NewCustomerView(saved))
}

// GetCustomer handles GET /api/customers/{id}
// @Summary Find a customer
// @Tags Customers
// @Produce json
// @Param id path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerView
// @Failure 400 {object} dto.ExceptionDetails "Invalid or unknown id"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/customers/{id} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.logServiceError(r, "Service failed to find customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerView(cust))
}

// UpdateCustomer handles PATCH /api/customers?customerId=
// @Summary Update a customer
// @Description Changes name, income and address. CPF, email and password stay as registered.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerId query int true "Customer ID" Minimum(1)
// @Param request body dto.CustomerUpdateRequest true "Fields to update"
// @Success 200 {object} dto.CustomerView
// @Failure 400 {object} dto.ExceptionDetails "Invalid payload or unknown id"
// @Failure 409 {object} dto.ExceptionDetails "Uniqueness conflict"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/customers [patch]
// @Security BearerAuth
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Query().Get("customerId"), "customerId")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CustomerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.logServiceError(r, "Service failed to find customer for update", err)
		respondError(w, err)
		return
	}

	cust.ApplyUpdate(req.ToUpdate())
	updated, err := h.service.Save(r.Context(), cust)
	if err != nil {
		h.logServiceError(r, "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer updated", slog.Int64("customerID", id))
	respondJSON(w, http.StatusOK, dto.NewCustomerView(updated))
}

// DeleteCustomer handles DELETE /api/customers/{id}
// @Summary Delete a customer
// @Tags Customers
// @Param id path int true "Customer ID" Minimum(1)
// @Success 204 "Customer deleted"
// @Failure 400 {object} dto.ExceptionDetails "Invalid or unknown id"
// @Failure 500 {object} dto.ExceptionDetails "Internal server error"
// @Router /api/customers/{id} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			h.logger.ErrorContext(r.Context(), "Service failed to delete customer", slog.Any("error", err))
		}
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deleted", slog.Int64("customerID", id))
	respondJSON(w, http.StatusNoContent, nil)
}
