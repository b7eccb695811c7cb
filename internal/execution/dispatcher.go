/*-------------------------------------------------------------------------
 *
 * dispatcher.go
 *    Execution dispatch for approved requests
 *
 * Maps operation codes to handlers performing the originally-deferred
 * business mutation. Execution is idempotent per approval request: a
 * request whose execution flag is already set returns its stored result
 * instead of re-executing.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/execution/dispatcher.go
 *
 *-------------------------------------------------------------------------
 */

package execution

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

/* Result is the outcome of one execution attempt. Manual marks requests
 * whose operation code has no registered handler; the approval stands,
 * the mutation is applied by an operator. */
type Result struct {
	Success bool                   `json:"success"`
	Manual  bool                   `json:"manual"`
	Message string                 `json:"message,omitempty"`
	Output  map[string]interface{} `json:"output,omitempty"`
}

/* ToJSONB converts the result for storage on the approval request */
func (r Result) ToJSONB() db.JSONBMap {
	m := db.JSONBMap{
		"success": r.Success,
		"manual":  r.Manual,
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	if r.Output != nil {
		m["output"] = r.Output
	}
	return m
}

/* resultFromJSONB reconstructs a stored result */
func resultFromJSONB(m db.JSONBMap) Result {
	var r Result
	if v, ok := m["success"].(bool); ok {
		r.Success = v
	}
	if v, ok := m["manual"].(bool); ok {
		r.Manual = v
	}
	if v, ok := m["message"].(string); ok {
		r.Message = v
	}
	if v, ok := m["output"].(map[string]interface{}); ok {
		r.Output = v
	}
	return r
}

/* Handler performs the deferred mutation for one operation code */
type Handler interface {
	Execute(ctx context.Context, req *db.ApprovalRequest) (Result, error)
}

/* HandlerFunc adapts a function to the Handler interface */
type HandlerFunc func(ctx context.Context, req *db.ApprovalRequest) (Result, error)

func (f HandlerFunc) Execute(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
	return f(ctx, req)
}

/* ResultStore records execution outcomes on approval requests */
type ResultStore interface {
	MarkApprovalExecuted(ctx context.Context, id uuid.UUID, executed bool, executedAt *time.Time, result db.JSONBMap) error
}

/* Dispatcher is the execution handler registry. Business modules
 * register their handlers at startup; the engine carries no per-module
 * business logic itself. */
type Dispatcher struct {
	mu         sync.RWMutex
	byCode     map[string]Handler
	byCategory map[string]Handler
	store      ResultStore
}

func NewDispatcher(store ResultStore) *Dispatcher {
	return &Dispatcher{
		byCode:     make(map[string]Handler),
		byCategory: make(map[string]Handler),
		store:      store,
	}
}

/* Register registers a handler for an operation code */
func (d *Dispatcher) Register(operationCode string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byCode[operationCode] = h
}

/* RegisterCategory registers a fallback handler for an operation category */
func (d *Dispatcher) RegisterCategory(category string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byCategory[category] = h
}

func (d *Dispatcher) resolve(req *db.ApprovalRequest) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if h, ok := d.byCode[req.OperationCode]; ok {
		return h, true
	}
	if h, ok := d.byCategory[req.Category]; ok {
		return h, true
	}
	return nil, false
}

/* Execute performs the deferred mutation for an approved request and
 * records the outcome. Invoking it again for the same request returns
 * the stored prior result without re-executing. */
func (d *Dispatcher) Execute(ctx context.Context, req *db.ApprovalRequest) Result {
	if req.Executed {
		metrics.RecordExecution(req.OperationCode, "duplicate", 0)
		return resultFromJSONB(req.ExecutionResult)
	}

	handler, ok := d.resolve(req)
	if !ok {
		result := Result{Manual: true, Message: "no handler registered, requires manual execution"}
		d.record(ctx, req, false, result)
		metrics.RecordExecution(req.OperationCode, "manual", 0)
		return result
	}

	start := time.Now()
	result, err := handler.Execute(ctx, req)
	duration := time.Since(start)

	if err != nil {
		result = Result{Success: false, Message: err.Error(), Output: result.Output}
		d.record(ctx, req, false, result)
		metrics.RecordExecution(req.OperationCode, "error", duration)
		metrics.ErrorWithContext(ctx, "Execution handler failed", err, map[string]interface{}{
			"approval_id":    req.ID.String(),
			"operation_code": req.OperationCode,
		})
		return result
	}

	result.Success = true
	d.record(ctx, req, true, result)
	metrics.RecordExecution(req.OperationCode, "success", duration)
	return result
}

func (d *Dispatcher) record(ctx context.Context, req *db.ApprovalRequest, executed bool, result Result) {
	var executedAt *time.Time
	if executed {
		now := time.Now()
		executedAt = &now
	}

	if err := d.store.MarkApprovalExecuted(ctx, req.ID, executed, executedAt, result.ToJSONB()); err != nil {
		metrics.ErrorWithContext(ctx, "Failed to record execution outcome", err, map[string]interface{}{
			"approval_id":    req.ID.String(),
			"operation_code": req.OperationCode,
		})
		return
	}

	req.Executed = executed
	req.ExecutedAt = executedAt
	req.ExecutionResult = result.ToJSONB()
}
