/*-------------------------------------------------------------------------
 *
 * provisioning_queries.go
 *    Database queries for trigger provisioning requests
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/provisioning_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

/* Trigger provisioning queries */
const (
	createProvisioningRequestQuery = `
		INSERT INTO sysafari_approval.trigger_provisioning_requests
		(business_module, business_action, proposed_name, description,
		 approver_roles, requester_id, requester_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	getProvisioningRequestQuery = `
		SELECT * FROM sysafari_approval.trigger_provisioning_requests WHERE id = $1`

	getOpenProvisioningRequestQuery = `
		SELECT * FROM sysafari_approval.trigger_provisioning_requests
		WHERE business_module = $1 AND business_action = $2
		AND status IN ('requested', 'developing')
		LIMIT 1`

	advanceProvisioningRequestQuery = `
		UPDATE sysafari_approval.trigger_provisioning_requests
		SET status = $2, developer_notes = $3, completed_by = $4,
			completed_at = CASE WHEN $2 IN ('completed', 'rejected') THEN NOW() ELSE NULL END,
			updated_at = NOW()
		WHERE id = $1 AND status = $5`

	listProvisioningRequestsQuery = `
		SELECT * FROM sysafari_approval.trigger_provisioning_requests
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
)

func (q *Queries) CreateProvisioningRequest(ctx context.Context, req *TriggerProvisioningRequest) error {
	params := []interface{}{
		req.BusinessModule, req.BusinessAction, req.ProposedName, req.Description,
		req.ApproverRoles, req.RequesterID, req.RequesterName, req.Status,
	}
	err := q.DB.GetContext(ctx, req, createProvisioningRequestQuery, params...)
	if err != nil {
		return fmt.Errorf("provisioning request creation failed: module=%s, action=%s, error=%w",
			req.BusinessModule, req.BusinessAction, err)
	}
	return nil
}

func (q *Queries) GetProvisioningRequest(ctx context.Context, id uuid.UUID) (*TriggerProvisioningRequest, error) {
	var req TriggerProvisioningRequest
	err := q.DB.GetContext(ctx, &req, getProvisioningRequestQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provisioning request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provisioning request: %w", err)
	}
	return &req, nil
}

/* GetOpenProvisioningRequest finds a non-terminal request for a
 * (module, action) pair, or ErrNotFound */
func (q *Queries) GetOpenProvisioningRequest(ctx context.Context, module, action string) (*TriggerProvisioningRequest, error) {
	var req TriggerProvisioningRequest
	err := q.DB.GetContext(ctx, &req, getOpenProvisioningRequestQuery, module, action)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("open provisioning request %s/%s: %w", module, action, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open provisioning request: %w", err)
	}
	return &req, nil
}

/* AdvanceProvisioningRequest transitions fromStatus -> toStatus
 * conditionally. Returns ErrNotPending when the row was not in
 * fromStatus. */
func (q *Queries) AdvanceProvisioningRequest(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, notes, completedBy *string) error {
	result, err := q.DB.ExecContext(ctx, advanceProvisioningRequestQuery,
		id, toStatus, notes, completedBy, fromStatus)
	if err != nil {
		return fmt.Errorf("provisioning advance failed: id=%s, error=%w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("provisioning request %s (expected status %s): %w", id, fromStatus, ErrNotPending)
	}
	return nil
}

func (q *Queries) ListProvisioningRequests(ctx context.Context, status *string, limit, offset int) ([]TriggerProvisioningRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	var requests []TriggerProvisioningRequest
	err := q.DB.SelectContext(ctx, &requests, listProvisioningRequestsQuery, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list provisioning requests: %w", err)
	}
	return requests, nil
}
