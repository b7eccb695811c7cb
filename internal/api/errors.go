/*-------------------------------------------------------------------------
 *
 * errors.go
 *    HTTP error envelope for the approval API
 *
 * Maps service-layer errors onto HTTP status codes and a uniform JSON
 * error body carrying the request ID for correlation.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"errors"
	"net/http"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
)

/* APIError is the wire-level error carrying an HTTP status */
type APIError struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Err       error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

/* NewError creates an API error */
func NewError(code int, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

/* WrapError attaches the request ID to an API error */
func WrapError(e *APIError, requestID string) *APIError {
	return &APIError{Code: e.Code, Message: e.Message, RequestID: requestID, Err: e.Err}
}

/* Common sentinel errors */
var (
	ErrUnauthorized = NewError(http.StatusUnauthorized, "unauthorized", nil)
	ErrForbidden    = NewError(http.StatusForbidden, "forbidden", nil)
	ErrNotFound     = NewError(http.StatusNotFound, "resource not found", nil)
)

/* FromServiceError maps the approval error taxonomy to HTTP statuses.
 * PolicyCreationError only reaches the wire when the gate failed
 * closed, hence 502: the engine could not uphold the policy. */
func FromServiceError(err error, requestID string) *APIError {
	var verr *approval.ValidationError
	if errors.As(err, &verr) {
		return &APIError{Code: http.StatusBadRequest, Message: verr.Error(), RequestID: requestID, Err: err}
	}

	var nerr *approval.NotFoundError
	if errors.As(err, &nerr) {
		return &APIError{Code: http.StatusNotFound, Message: nerr.Error(), RequestID: requestID, Err: err}
	}

	var serr *approval.InvalidStateError
	if errors.As(err, &serr) {
		return &APIError{Code: http.StatusConflict, Message: serr.Error(), RequestID: requestID, Err: err}
	}

	var perr *approval.PermissionError
	if errors.As(err, &perr) {
		return &APIError{Code: http.StatusForbidden, Message: perr.Error(), RequestID: requestID, Err: err}
	}

	var pce *approval.PolicyCreationError
	if errors.As(err, &pce) {
		return &APIError{Code: http.StatusBadGateway, Message: pce.Error(), RequestID: requestID, Err: err}
	}

	return &APIError{Code: http.StatusInternalServerError, Message: "internal server error", RequestID: requestID, Err: err}
}
