/*-------------------------------------------------------------------------
 *
 * approval_queries.go
 *    Database queries for approval requests
 *
 * The pending-to-decided transition is a single conditional UPDATE
 * guarded by status = 'pending'; concurrent decisions on one request
 * yield exactly one affected row.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/approval_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* ErrNotPending is returned when a conditional transition affects no row
 * for a request that exists but is no longer pending */
var ErrNotPending = errors.New("request is not pending")

/* Approval request queries */
const (
	createApprovalRequestQuery = `
		INSERT INTO sysafari_approval.approval_requests
		(category, operation_code, business_id, business_table, title, content,
		 amount, currency, request_data, applicant_id, applicant_name,
		 applicant_role, department, priority, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	getApprovalRequestQuery = `
		SELECT * FROM sysafari_approval.approval_requests WHERE id = $1`

	decideApprovalRequestQuery = `
		UPDATE sysafari_approval.approval_requests
		SET status = $2, approver_id = $3, approver_name = $4, approver_role = $5,
			decision_comment = $6, decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	markExecutedQuery = `
		UPDATE sysafari_approval.approval_requests
		SET executed = $2, executed_at = $3, execution_result = $4::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = 'approved'`

	listApprovalRequestsQuery = `
		SELECT * FROM sysafari_approval.approval_requests
		WHERE ($1::text IS NULL OR status = $1)
		AND ($2::text IS NULL OR category = $2)
		AND ($3::text IS NULL OR operation_code = $3)
		AND ($4::text IS NULL OR applicant_id = $4)
		AND ($5::text IS NULL OR approver_id = $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`

	/* Approver-facing queue: oldest pending first within priority */
	listPendingQueueQuery = `
		SELECT * FROM sysafari_approval.approval_requests
		WHERE status = 'pending'
		ORDER BY priority DESC, created_at ASC
		LIMIT $1 OFFSET $2`

	listPendingQueueForRolesQuery = `
		SELECT r.* FROM sysafari_approval.approval_requests r
		JOIN sysafari_approval.operation_triggers t ON t.operation_code = r.operation_code
		WHERE r.status = 'pending' AND t.approver_roles && $1
		ORDER BY r.priority DESC, r.created_at ASC
		LIMIT $2 OFFSET $3`
)

func (q *Queries) CreateApprovalRequest(ctx context.Context, req *ApprovalRequest) error {
	dataValue, err := req.RequestData.Value()
	if err != nil {
		return fmt.Errorf("failed to convert request data: %w", err)
	}

	params := []interface{}{
		req.Category, req.OperationCode, req.BusinessID, req.BusinessTable,
		req.Title, req.Content, req.Amount, req.Currency, dataValue,
		req.ApplicantID, req.ApplicantName, req.ApplicantRole, req.Department,
		req.Priority, req.Status, req.ExpiresAt,
	}
	err = q.DB.GetContext(ctx, req, createApprovalRequestQuery, params...)
	if err != nil {
		return fmt.Errorf("approval request creation failed: %w", err)
	}
	return nil
}

func (q *Queries) GetApprovalRequest(ctx context.Context, id uuid.UUID) (*ApprovalRequest, error) {
	var req ApprovalRequest
	err := q.DB.GetContext(ctx, &req, getApprovalRequestQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("approval request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get approval request: %w", err)
	}
	return &req, nil
}

/* DecideApprovalRequest transitions pending -> status atomically.
 * Returns ErrNotPending when the row exists but was already decided. */
func (q *Queries) DecideApprovalRequest(ctx context.Context, id uuid.UUID, status, approverID string, approverName, approverRole, comment *string) error {
	result, err := q.DB.ExecContext(ctx, decideApprovalRequestQuery,
		id, status, approverID, approverName, approverRole, comment)
	if err != nil {
		return fmt.Errorf("approval decision failed: id=%s, error=%w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("approval request %s: %w", id, ErrNotPending)
	}
	return nil
}

/* MarkApprovalExecuted records the execution outcome of an approved request */
func (q *Queries) MarkApprovalExecuted(ctx context.Context, id uuid.UUID, executed bool, executedAt *time.Time, result JSONBMap) error {
	resultValue, err := result.Value()
	if err != nil {
		return fmt.Errorf("failed to convert execution result: %w", err)
	}

	res, err := q.DB.ExecContext(ctx, markExecutedQuery, id, executed, executedAt, resultValue)
	if err != nil {
		return fmt.Errorf("failed to record execution: id=%s, error=%w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("approved request %s: %w", id, ErrNotFound)
	}
	return nil
}

func (q *Queries) ListApprovalRequests(ctx context.Context, filter ApprovalRequestFilter) ([]ApprovalRequest, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var requests []ApprovalRequest
	params := []interface{}{
		filter.Status, filter.Category, filter.OperationCode,
		filter.ApplicantID, filter.ApproverID, limit, filter.Offset,
	}
	err := q.DB.SelectContext(ctx, &requests, listApprovalRequestsQuery, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval requests: %w", err)
	}
	return requests, nil
}

/* ListPendingQueue returns the approver-facing pending queue, highest
 * priority first, then oldest first. A nil roles slice means no role
 * scoping (admin view). */
func (q *Queries) ListPendingQueue(ctx context.Context, approverRoles []string, limit, offset int) ([]ApprovalRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	var requests []ApprovalRequest
	var err error
	if approverRoles == nil {
		err = q.DB.SelectContext(ctx, &requests, listPendingQueueQuery, limit, offset)
	} else {
		err = q.DB.SelectContext(ctx, &requests, listPendingQueueForRolesQuery,
			pq.StringArray(approverRoles), limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list pending queue: %w", err)
	}
	return requests, nil
}
