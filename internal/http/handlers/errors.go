// Package handlers – error codes.
//
// Every error response carries one of these codes next to the HTTP status.
// Clients branch on the code, not the message.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/chiragbiradar/StackIt-odoo/internal/services"
)

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTimeout          = "timeout"

	// Domain-specific:
	ErrCodeSelfVote       = "self_vote"
	ErrCodeQuestionClosed = "question_closed"
	ErrCodeVerifyFailed   = "verify_failed"
)

// statusFor maps a service error onto status, code and a client-safe
// message. Storage failures never leak their driver text.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest, err.Error()
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, services.ErrAuthorization):
		return http.StatusForbidden, ErrCodeForbidden, err.Error()
	case errors.Is(err, services.ErrSelfVote):
		return http.StatusUnprocessableEntity, ErrCodeSelfVote, err.Error()
	case errors.Is(err, services.ErrQuestionClosed):
		return http.StatusConflict, ErrCodeQuestionClosed, err.Error()
	case errors.Is(err, services.ErrDuplicate):
		return http.StatusConflict, ErrCodeConflict, "duplicate record"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal server error"
	}
}
