/*-------------------------------------------------------------------------
 *
 * queries.go
 *    Database queries for operation triggers
 *
 * Provides the shared Queries struct plus query functions for the
 * trigger registry.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

/* ErrNotFound is returned when a row does not exist */
var ErrNotFound = errors.New("not found")

type Queries struct {
	DB *sqlx.DB
}

func NewQueries(db *sqlx.DB) *Queries {
	return &Queries{DB: db}
}

/* Operation trigger queries */
const (
	createTriggerQuery = `
		INSERT INTO sysafari_approval.operation_triggers
		(operation_code, name, category, requires_approval, approval_level,
		 approver_roles, business_module, business_action, trigger_condition, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	getTriggerByCodeQuery = `
		SELECT * FROM sysafari_approval.operation_triggers WHERE operation_code = $1`

	getActiveTriggerByCodeQuery = `
		SELECT * FROM sysafari_approval.operation_triggers
		WHERE operation_code = $1 AND active = true`

	getTriggerByModuleActionQuery = `
		SELECT * FROM sysafari_approval.operation_triggers
		WHERE business_module = $1 AND business_action = $2`

	listTriggersQuery = `
		SELECT * FROM sysafari_approval.operation_triggers
		WHERE ($1::text IS NULL OR category = $1)
		AND ($2::boolean IS NULL OR active = $2)
		ORDER BY operation_code
		LIMIT $3 OFFSET $4`

	updateTriggerQuery = `
		UPDATE sysafari_approval.operation_triggers
		SET name = $2, category = $3, requires_approval = $4, approval_level = $5,
			approver_roles = $6, trigger_condition = $7, updated_at = NOW()
		WHERE operation_code = $1
		RETURNING updated_at`

	deactivateTriggerQuery = `
		UPDATE sysafari_approval.operation_triggers
		SET active = false, updated_at = NOW()
		WHERE operation_code = $1 AND active = true`
)

func (q *Queries) CreateTrigger(ctx context.Context, t *OperationTrigger) error {
	params := []interface{}{
		t.OperationCode, t.Name, t.Category, t.RequiresApproval, t.ApprovalLevel,
		t.ApproverRoles, t.BusinessModule, t.BusinessAction, t.TriggerCondition, t.Active,
	}
	err := q.DB.GetContext(ctx, t, createTriggerQuery, params...)
	if err != nil {
		return fmt.Errorf("trigger creation failed: code=%s, error=%w", t.OperationCode, err)
	}
	return nil
}

func (q *Queries) GetTriggerByCode(ctx context.Context, operationCode string) (*OperationTrigger, error) {
	var t OperationTrigger
	err := q.DB.GetContext(ctx, &t, getTriggerByCodeQuery, operationCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trigger %s: %w", operationCode, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger: code=%s, error=%w", operationCode, err)
	}
	return &t, nil
}

/* GetActiveTrigger returns the active trigger for a code, or ErrNotFound */
func (q *Queries) GetActiveTrigger(ctx context.Context, operationCode string) (*OperationTrigger, error) {
	var t OperationTrigger
	err := q.DB.GetContext(ctx, &t, getActiveTriggerByCodeQuery, operationCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active trigger %s: %w", operationCode, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active trigger: code=%s, error=%w", operationCode, err)
	}
	return &t, nil
}

func (q *Queries) GetTriggerByModuleAction(ctx context.Context, module, action string) (*OperationTrigger, error) {
	var t OperationTrigger
	err := q.DB.GetContext(ctx, &t, getTriggerByModuleActionQuery, module, action)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trigger %s/%s: %w", module, action, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger: module=%s, action=%s, error=%w", module, action, err)
	}
	return &t, nil
}

func (q *Queries) ListTriggers(ctx context.Context, category *string, active *bool, limit, offset int) ([]OperationTrigger, error) {
	var triggers []OperationTrigger
	err := q.DB.SelectContext(ctx, &triggers, listTriggersQuery, category, active, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	return triggers, nil
}

func (q *Queries) UpdateTrigger(ctx context.Context, t *OperationTrigger) error {
	params := []interface{}{
		t.OperationCode, t.Name, t.Category, t.RequiresApproval, t.ApprovalLevel,
		t.ApproverRoles, t.TriggerCondition,
	}
	err := q.DB.GetContext(ctx, t, updateTriggerQuery, params...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("trigger %s: %w", t.OperationCode, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("trigger update failed: code=%s, error=%w", t.OperationCode, err)
	}
	return nil
}

/* DeactivateTrigger marks a trigger inactive. Triggers are never deleted. */
func (q *Queries) DeactivateTrigger(ctx context.Context, operationCode string) error {
	result, err := q.DB.ExecContext(ctx, deactivateTriggerQuery, operationCode)
	if err != nil {
		return fmt.Errorf("trigger deactivation failed: code=%s, error=%w", operationCode, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("active trigger %s: %w", operationCode, ErrNotFound)
	}
	return nil
}
