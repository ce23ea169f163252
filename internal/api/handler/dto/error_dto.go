package dto

import (
	"time"
)

// ExceptionDetails is the single error body every failing endpoint returns.
type ExceptionDetails struct {
	Title     string            `json:"title"`
	Timestamp string            `json:"timestamp" example:"2031-01-10"`
	Status    int               `json:"status"`
	Exception string            `json:"exception"`
	Details   map[string]string `json:"details"`
}

func NewExceptionDetails(title string, status int, exception string, details map[string]string, now time.Time) ExceptionDetails {
	if details == nil {
		details = map[string]string{}
	}
	return ExceptionDetails{
		Title:     title,
		Timestamp: now.Format(DateLayout),
		Status:    status,
		Exception: exception,
		Details:   details,
	}
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
