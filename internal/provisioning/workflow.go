/*-------------------------------------------------------------------------
 *
 * workflow.go
 *    Trigger provisioning workflow
 *
 * Business modules that want a new operation gated file a provisioning
 * request. Development staff move it through requested -> developing ->
 * completed or rejected; completion materializes an active trigger in
 * the registry.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/provisioning/workflow.go
 *
 *-------------------------------------------------------------------------
 */

package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

/* Store is the persistence capability the workflow runs on */
type Store interface {
	CreateProvisioningRequest(ctx context.Context, req *db.TriggerProvisioningRequest) error
	GetProvisioningRequest(ctx context.Context, id uuid.UUID) (*db.TriggerProvisioningRequest, error)
	GetOpenProvisioningRequest(ctx context.Context, module, action string) (*db.TriggerProvisioningRequest, error)
	AdvanceProvisioningRequest(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, notes, completedBy *string) error
	ListProvisioningRequests(ctx context.Context, status *string, limit, offset int) ([]db.TriggerProvisioningRequest, error)

	GetTriggerByModuleAction(ctx context.Context, module, action string) (*db.OperationTrigger, error)
	CreateTrigger(ctx context.Context, t *db.OperationTrigger) error
}

type Workflow struct {
	store Store
}

func NewWorkflow(store Store) *Workflow {
	return &Workflow{store: store}
}

/* RequestParams describes a provisioning request */
type RequestParams struct {
	BusinessModule string
	BusinessAction string
	ProposedName   string
	Description    *string
	ApproverRoles  []string
	RequesterID    string
	RequesterName  *string
}

/* Request files a provisioning request for a (module, action) pair.
 * The pair must not already be covered by a trigger nor by another
 * request that is still open. */
func (w *Workflow) Request(ctx context.Context, params RequestParams) (*db.TriggerProvisioningRequest, error) {
	if params.BusinessModule == "" {
		return nil, &approval.ValidationError{Field: "businessModule", Reason: "required"}
	}
	if params.BusinessAction == "" {
		return nil, &approval.ValidationError{Field: "businessAction", Reason: "required"}
	}
	if params.ProposedName == "" {
		return nil, &approval.ValidationError{Field: "proposedName", Reason: "required"}
	}
	if params.RequesterID == "" {
		return nil, &approval.ValidationError{Field: "requesterId", Reason: "required"}
	}

	existing, err := w.store.GetTriggerByModuleAction(ctx, params.BusinessModule, params.BusinessAction)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("trigger lookup failed: %w", err)
	}
	if existing != nil {
		return nil, &approval.ValidationError{
			Field:  "businessAction",
			Reason: fmt.Sprintf("operation %s/%s is already gated by trigger %s", params.BusinessModule, params.BusinessAction, existing.OperationCode),
		}
	}

	open, err := w.store.GetOpenProvisioningRequest(ctx, params.BusinessModule, params.BusinessAction)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("open request lookup failed: %w", err)
	}
	if open != nil {
		return nil, &approval.ValidationError{
			Field:  "businessAction",
			Reason: fmt.Sprintf("a provisioning request for %s/%s is already open", params.BusinessModule, params.BusinessAction),
		}
	}

	approverRoles := params.ApproverRoles
	if len(approverRoles) == 0 {
		approverRoles = []string{roles.RoleBoss}
	}

	req := &db.TriggerProvisioningRequest{
		BusinessModule: params.BusinessModule,
		BusinessAction: params.BusinessAction,
		ProposedName:   params.ProposedName,
		Description:    params.Description,
		ApproverRoles:  pq.StringArray(approverRoles),
		RequesterID:    params.RequesterID,
		RequesterName:  params.RequesterName,
		Status:         db.ProvisioningRequested,
	}
	if err := w.store.CreateProvisioningRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create provisioning request: %w", err)
	}

	metrics.InfoWithContext(ctx, "Trigger provisioning requested", map[string]interface{}{
		"provisioning_id": req.ID.String(),
		"business_module": req.BusinessModule,
		"business_action": req.BusinessAction,
	})
	return req, nil
}

/* legal status transitions */
var transitions = map[string][]string{
	db.ProvisioningRequested:  {db.ProvisioningDeveloping, db.ProvisioningRejected},
	db.ProvisioningDeveloping: {db.ProvisioningCompleted, db.ProvisioningRejected},
}

func transitionAllowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

/* Advance moves a provisioning request to the next status. Completing
 * a request materializes an active trigger for its (module, action)
 * pair; the request only reaches completed if that trigger lands. */
func (w *Workflow) Advance(ctx context.Context, id uuid.UUID, toStatus string, notes *string, actorID string) (*db.TriggerProvisioningRequest, error) {
	req, err := w.store.GetProvisioningRequest(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &approval.NotFoundError{ID: id}
		}
		return nil, err
	}

	if !transitionAllowed(req.Status, toStatus) {
		return nil, &approval.InvalidStateError{ID: id, Status: req.Status}
	}

	var completedBy *string
	if toStatus == db.ProvisioningCompleted || toStatus == db.ProvisioningRejected {
		if actorID == "" {
			return nil, &approval.ValidationError{Field: "actorId", Reason: "required for terminal transitions"}
		}
		completedBy = &actorID
	}

	if toStatus == db.ProvisioningCompleted {
		if err := w.materializeTrigger(ctx, req); err != nil {
			return nil, err
		}
	}

	if err := w.store.AdvanceProvisioningRequest(ctx, id, req.Status, toStatus, notes, completedBy); err != nil {
		if errors.Is(err, db.ErrNotPending) {
			return nil, &approval.InvalidStateError{ID: id, Status: req.Status}
		}
		return nil, fmt.Errorf("failed to advance provisioning request: %w", err)
	}

	metrics.InfoWithContext(ctx, "Trigger provisioning advanced", map[string]interface{}{
		"provisioning_id": id.String(),
		"from_status":     req.Status,
		"to_status":       toStatus,
	})

	return w.store.GetProvisioningRequest(ctx, id)
}

/* Get fetches one provisioning request */
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*db.TriggerProvisioningRequest, error) {
	req, err := w.store.GetProvisioningRequest(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &approval.NotFoundError{ID: id}
		}
		return nil, err
	}
	return req, nil
}

/* List returns provisioning requests newest first */
func (w *Workflow) List(ctx context.Context, status *string, limit, offset int) ([]db.TriggerProvisioningRequest, error) {
	return w.store.ListProvisioningRequests(ctx, status, limit, offset)
}

/* OperationCode derives the registry code for a (module, action) pair */
func OperationCode(module, action string) string {
	code := strings.ToUpper(module + "_" + action)
	return strings.ReplaceAll(code, "-", "_")
}

func (w *Workflow) materializeTrigger(ctx context.Context, req *db.TriggerProvisioningRequest) error {
	/* A prior completion attempt may have created the trigger and then
	 * failed on the status write. Re-use it so the retry can finish
	 * instead of tripping the unique operation code. */
	existing, err := w.store.GetTriggerByModuleAction(ctx, req.BusinessModule, req.BusinessAction)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("trigger lookup failed: %w", err)
	}
	if existing != nil {
		return nil
	}

	trigger := &db.OperationTrigger{
		OperationCode:    OperationCode(req.BusinessModule, req.BusinessAction),
		Name:             req.ProposedName,
		Category:         db.CategoryBusiness,
		RequiresApproval: true,
		ApprovalLevel:    1,
		ApproverRoles:    req.ApproverRoles,
		BusinessModule:   req.BusinessModule,
		BusinessAction:   req.BusinessAction,
		Active:           true,
	}
	if err := w.store.CreateTrigger(ctx, trigger); err != nil {
		return fmt.Errorf("failed to materialize trigger for %s/%s: %w", req.BusinessModule, req.BusinessAction, err)
	}
	return nil
}
