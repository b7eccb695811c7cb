/*-------------------------------------------------------------------------
 *
 * errors.go
 *    Error taxonomy of the approval engine
 *
 * Validation, not-found, invalid-state and permission errors are
 * caller-correctable and always returned synchronously. Policy creation
 * errors are the single deliberately fail-open case, handled by
 * CheckAndCreate per operation category.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/approval/errors.go
 *
 *-------------------------------------------------------------------------
 */

package approval

import (
	"fmt"

	"github.com/google/uuid"
)

/* ValidationError reports missing or malformed input */
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field=%s, reason=%s", e.Field, e.Reason)
}

/* NotFoundError reports an unknown approval request id */
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("approval request %s not found", e.ID)
}

/* InvalidStateError reports a decision attempted on a non-pending
 * request, including the concurrent-decision loser */
type InvalidStateError struct {
	ID     uuid.UUID
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("approval request %s is not pending (status=%s)", e.ID, e.Status)
}

/* PermissionError reports an approver role not authorized for an
 * operation code */
type PermissionError struct {
	Role          string
	OperationCode string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("role %s is not authorized to decide %s requests", e.Role, e.OperationCode)
}

/* PolicyCreationError reports that the gate required approval but the
 * request record could not be persisted */
type PolicyCreationError struct {
	OperationCode string
	Err           error
}

func (e *PolicyCreationError) Error() string {
	return fmt.Sprintf("approval required for %s but request creation failed: %v", e.OperationCode, e.Err)
}

func (e *PolicyCreationError) Unwrap() error {
	return e.Err
}
