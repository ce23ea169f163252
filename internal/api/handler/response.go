package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"credit-system/internal/api/handler/dto"
	"credit-system/internal/pkg/apperrors"
)

const (
	titleBadRequest = "Bad request! consult the documentation"
	titleConflict   = "Conflict! consult the documentation"
	titleInternal   = "Internal server error"

	internalErrorMessage = "An unexpected error occurred."
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"title":"Internal server error","status":500}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// respondError renders err as exactly one ExceptionDetails record.
func respondError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	var status int
	var title string
	var details map[string]string

	switch kind {
	case apperrors.KindValidation:
		status, title, details = http.StatusBadRequest, titleBadRequest, validationDetails(err)
	case apperrors.KindNotFound:
		status, title, details = http.StatusBadRequest, titleBadRequest, singleDetail(err, string(kind))
	case apperrors.KindConflict:
		status, title, details = http.StatusConflict, titleConflict, singleDetail(err, string(kind))
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
		kind = apperrors.KindInternal
		status, title = http.StatusInternalServerError, titleInternal
		details = map[string]string{string(kind): internalErrorMessage}
	}

	respondJSON(w, status, dto.NewExceptionDetails(title, status, string(kind), details, time.Now()))
}

func validationDetails(err error) map[string]string {
	var many *apperrors.ValidationErrors
	if errors.As(err, &many) {
		details := make(map[string]string, len(many.Fields))
		for field, msg := range many.Fields {
			details[field] = msg
		}
		return details
	}
	var one *apperrors.ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return map[string]string{one.Field: one.Message}
	}
	return map[string]string{"request": err.Error()}
}

// singleDetail keys the message by the AppError code when there is one.
func singleDetail(err error, fallbackKey string) map[string]string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		key := appErr.Code
		if key == "" {
			key = fallbackKey
		}
		return map[string]string{key: appErr.Message}
	}
	return map[string]string{fallbackKey: err.Error()}
}

func parseID(raw, name string) (int64, error) {
	if raw == "" {
		return 0, apperrors.NewValidationError(name, fmt.Sprintf("%s is required", name))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name, fmt.Sprintf("invalid %s: %s", name, raw))
	}
	return id, nil
}
