/*-------------------------------------------------------------------------
 *
 * service.go
 *    Approval request lifecycle service
 *
 * Owns creation, listing, and the pending-to-decided transition of
 * approval requests, composing the policy evaluator, the permission
 * checker, the execution dispatcher and the notification dispatcher.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/approval/service.go
 *
 *-------------------------------------------------------------------------
 */

package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/config"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/execution"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/policy"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

/* DefaultExpiryHours applies when no expiry policy is configured */
const DefaultExpiryHours = 72

/* Store is the persistence capability the service runs on */
type Store interface {
	CreateApprovalRequest(ctx context.Context, req *db.ApprovalRequest) error
	GetApprovalRequest(ctx context.Context, id uuid.UUID) (*db.ApprovalRequest, error)
	DecideApprovalRequest(ctx context.Context, id uuid.UUID, status, approverID string, approverName, approverRole, comment *string) error
	ListApprovalRequests(ctx context.Context, filter db.ApprovalRequestFilter) ([]db.ApprovalRequest, error)
	ListPendingQueue(ctx context.Context, approverRoles []string, limit, offset int) ([]db.ApprovalRequest, error)
}

/* Gate evaluates whether an operation requires approval */
type Gate interface {
	Evaluate(ctx context.Context, operationCode string, ec policy.EvalContext) (policy.Decision, error)
}

/* ApproverCheck authorizes decision makers */
type ApproverCheck interface {
	CheckApproverPermission(approverRole string, trigger *db.OperationTrigger) bool
}

/* Executor dispatches the deferred mutation after approval */
type Executor interface {
	Execute(ctx context.Context, req *db.ApprovalRequest) execution.Result
}

/* Notifier is the fire-and-forget notification side channel */
type Notifier interface {
	NotifyApprovers(ctx context.Context, req *db.ApprovalRequest, trigger *db.OperationTrigger)
	NotifyApplicant(ctx context.Context, req *db.ApprovalRequest, outcome string, comment *string)
}

type Service struct {
	store     Store
	triggers  policy.TriggerSource
	gate      Gate
	checker   ApproverCheck
	executor  Executor
	notifier  Notifier
	hierarchy *roles.Hierarchy
	cfg       config.ApprovalConfig
}

func NewService(store Store, triggers policy.TriggerSource, gate Gate, checker ApproverCheck,
	executor Executor, notifier Notifier, hierarchy *roles.Hierarchy, cfg config.ApprovalConfig) *Service {
	return &Service{
		store:     store,
		triggers:  triggers,
		gate:      gate,
		checker:   checker,
		executor:  executor,
		notifier:  notifier,
		hierarchy: hierarchy,
		cfg:       cfg,
	}
}

/* CreateParams carries everything needed to create an approval request */
type CreateParams struct {
	OperationCode string
	Category      string
	Title         string
	Content       *string
	BusinessID    *string
	BusinessTable *string
	Amount        *float64
	Currency      *string
	RequestData   map[string]interface{}
	ApplicantID   string
	ApplicantName *string
	ApplicantRole *string
	Department    *string
	Priority      int
}

/* Create validates params and persists a pending approval request.
 * Approver notification is fire-and-forget: its failure never fails
 * the create call. */
func (s *Service) Create(ctx context.Context, params CreateParams) (*db.ApprovalRequest, error) {
	if params.OperationCode == "" {
		return nil, &ValidationError{Field: "operationCode", Reason: "required"}
	}
	if params.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if params.ApplicantID == "" {
		return nil, &ValidationError{Field: "applicantId", Reason: "required"}
	}

	data := db.FromMap(params.RequestData)
	if err := execution.ValidatePayload(params.OperationCode, data); err != nil {
		return nil, &ValidationError{Field: "requestData", Reason: err.Error()}
	}

	category := params.Category
	if category == "" {
		category = db.CategoryBusiness
	}

	expiryHours := s.cfg.ExpiryHours
	if expiryHours <= 0 {
		expiryHours = DefaultExpiryHours
	}

	req := &db.ApprovalRequest{
		Category:      category,
		OperationCode: params.OperationCode,
		BusinessID:    params.BusinessID,
		BusinessTable: params.BusinessTable,
		Title:         params.Title,
		Content:       params.Content,
		Amount:        params.Amount,
		Currency:      params.Currency,
		RequestData:   data,
		ApplicantID:   params.ApplicantID,
		ApplicantName: params.ApplicantName,
		ApplicantRole: params.ApplicantRole,
		Department:    params.Department,
		Priority:      params.Priority,
		Status:        db.StatusPending,
		ExpiresAt:     time.Now().Add(time.Duration(expiryHours) * time.Hour),
	}

	if err := s.store.CreateApprovalRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create approval request: %w", err)
	}

	trigger := s.lookupTrigger(ctx, req.OperationCode)
	s.notifier.NotifyApprovers(ctx, req, trigger)

	return req, nil
}

/* GateResult is the outcome of CheckAndCreate. Err carries a surfaced
 * policy-creation failure when the gate failed open. */
type GateResult struct {
	NeedsApproval bool
	Approval      *db.ApprovalRequest
	Err           error
}

/* CheckAndCreate is the single entry point business modules call before
 * a sensitive mutation. It is safe to call unconditionally: operations
 * with no gate come back NeedsApproval=false immediately.
 *
 * When approval is required but the request cannot be persisted, the
 * configured per-category mode applies: fail-open surfaces the error in
 * the result but lets the operation proceed, fail-closed returns the
 * error and blocks. */
func (s *Service) CheckAndCreate(ctx context.Context, operationCode string, params CreateParams) (GateResult, error) {
	params.OperationCode = operationCode

	decision, err := s.gate.Evaluate(ctx, operationCode, policy.EvalContext{
		Amount:     params.Amount,
		BusinessID: derefString(params.BusinessID),
	})
	if err != nil {
		return s.policyFailure(ctx, operationCode, params.Category, err)
	}

	if !decision.Required {
		return GateResult{NeedsApproval: false}, nil
	}

	params.Category = decision.Trigger.Category
	if params.Priority == 0 {
		params.Priority = decision.Trigger.ApprovalLevel
	}

	req, err := s.Create(ctx, params)
	if err != nil {
		/* Validation failures are caller-correctable, never swallowed */
		var verr *ValidationError
		if errors.As(err, &verr) {
			return GateResult{}, err
		}
		return s.policyFailure(ctx, operationCode, params.Category, err)
	}

	return GateResult{NeedsApproval: true, Approval: req}, nil
}

/* policyFailure applies the per-category fail-open / fail-closed policy */
func (s *Service) policyFailure(ctx context.Context, operationCode, category string, cause error) (GateResult, error) {
	pce := &PolicyCreationError{OperationCode: operationCode, Err: cause}

	if s.cfg.PolicyErrorMode(category) == config.PolicyErrorFailClosed {
		metrics.ErrorWithContext(ctx, "Approval gate failed closed", cause, map[string]interface{}{
			"operation_code": operationCode,
			"category":       category,
		})
		return GateResult{NeedsApproval: true, Err: pce}, pce
	}

	metrics.ErrorWithContext(ctx, "Approval gate failed open, operation proceeds ungated", cause, map[string]interface{}{
		"operation_code": operationCode,
		"category":       category,
	})
	return GateResult{NeedsApproval: false, Err: pce}, nil
}

/* Approve transitions a pending request to approved, dispatches
 * execution synchronously, and notifies the applicant. The execution
 * outcome, including failure, is recorded but never reverts the
 * approval. */
func (s *Service) Approve(ctx context.Context, id uuid.UUID, approverID string, approverName, approverRole *string, comment *string) (*db.ApprovalRequest, error) {
	if approverID == "" {
		return nil, &ValidationError{Field: "approverId", Reason: "required"}
	}

	req, _, err := s.checkDecidable(ctx, id, approverRole)
	if err != nil {
		return nil, err
	}

	if err := s.store.DecideApprovalRequest(ctx, id, db.StatusApproved, approverID, approverName, approverRole, comment); err != nil {
		return nil, s.mapDecideError(ctx, id, err)
	}
	metrics.RecordDecision(req.OperationCode, "approved")

	now := time.Now()
	req.Status = db.StatusApproved
	req.ApproverID = &approverID
	req.ApproverName = approverName
	req.ApproverRole = approverRole
	req.DecisionComment = comment
	req.DecidedAt = &now

	result := s.executor.Execute(ctx, req)
	if !result.Success && !result.Manual {
		metrics.WarnWithContext(ctx, "Deferred action failed after approval, manual remediation expected", map[string]interface{}{
			"approval_id":    req.ID.String(),
			"operation_code": req.OperationCode,
			"message":        result.Message,
		})
	}

	s.notifier.NotifyApplicant(ctx, req, db.StatusApproved, comment)

	return req, nil
}

/* Reject transitions a pending request to rejected. A reason is
 * mandatory; nothing is executed. */
func (s *Service) Reject(ctx context.Context, id uuid.UUID, approverID string, approverName, approverRole *string, reason string) (*db.ApprovalRequest, error) {
	if approverID == "" {
		return nil, &ValidationError{Field: "approverId", Reason: "required"}
	}
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "required"}
	}

	req, _, err := s.checkDecidable(ctx, id, approverRole)
	if err != nil {
		return nil, err
	}

	if err := s.store.DecideApprovalRequest(ctx, id, db.StatusRejected, approverID, approverName, approverRole, &reason); err != nil {
		return nil, s.mapDecideError(ctx, id, err)
	}
	metrics.RecordDecision(req.OperationCode, "rejected")

	now := time.Now()
	req.Status = db.StatusRejected
	req.ApproverID = &approverID
	req.ApproverName = approverName
	req.ApproverRole = approverRole
	req.DecisionComment = &reason
	req.DecidedAt = &now

	s.notifier.NotifyApplicant(ctx, req, db.StatusRejected, &reason)

	return req, nil
}

/* checkDecidable loads the request and runs the state and permission
 * preconditions shared by Approve and Reject. The pending check here is
 * advisory; the conditional update is what makes the transition race
 * safe. */
func (s *Service) checkDecidable(ctx context.Context, id uuid.UUID, approverRole *string) (*db.ApprovalRequest, *db.OperationTrigger, error) {
	req, err := s.store.GetApprovalRequest(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, &NotFoundError{ID: id}
		}
		return nil, nil, fmt.Errorf("failed to load approval request: %w", err)
	}

	if !req.IsPending() {
		return nil, nil, &InvalidStateError{ID: id, Status: req.Status}
	}

	trigger := s.lookupTrigger(ctx, req.OperationCode)
	role := derefString(approverRole)
	if !s.checker.CheckApproverPermission(role, trigger) {
		return nil, nil, &PermissionError{Role: role, OperationCode: req.OperationCode}
	}

	return req, trigger, nil
}

func (s *Service) mapDecideError(ctx context.Context, id uuid.UUID, err error) error {
	if errors.Is(err, db.ErrNotPending) {
		/* Lost the race to a concurrent decision */
		return &InvalidStateError{ID: id, Status: "decided"}
	}
	if errors.Is(err, db.ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return fmt.Errorf("decision failed: %w", err)
}

/* GetByID fetches one approval request */
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*db.ApprovalRequest, error) {
	req, err := s.store.GetApprovalRequest(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return req, nil
}

/* List returns approval requests newest first, narrowed by filter */
func (s *Service) List(ctx context.Context, filter db.ApprovalRequestFilter) ([]db.ApprovalRequest, error) {
	return s.store.ListApprovalRequests(ctx, filter)
}

/* PendingQueue returns the approver-facing queue for a role, highest
 * priority first then oldest first. Admin sees the full queue. */
func (s *Service) PendingQueue(ctx context.Context, approverRole string, limit, offset int) ([]db.ApprovalRequest, error) {
	if s.hierarchy.IsAdmin(approverRole) {
		return s.store.ListPendingQueue(ctx, nil, limit, offset)
	}
	return s.store.ListPendingQueue(ctx, []string{approverRole}, limit, offset)
}

func (s *Service) lookupTrigger(ctx context.Context, operationCode string) *db.OperationTrigger {
	trigger, err := s.triggers.GetActiveTrigger(ctx, operationCode)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			metrics.WarnWithContext(ctx, "Trigger lookup failed", map[string]interface{}{
				"operation_code": operationCode,
				"error":          err.Error(),
			})
		}
		return nil
	}
	return trigger
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
