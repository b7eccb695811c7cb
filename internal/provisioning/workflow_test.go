package provisioning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/approval"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

type memStore struct {
	mu         sync.Mutex
	requests   map[uuid.UUID]*db.TriggerProvisioningRequest
	triggers   []*db.OperationTrigger
	advanceErr error
}

func newMemStore() *memStore {
	return &memStore{requests: make(map[uuid.UUID]*db.TriggerProvisioningRequest)}
}

func (m *memStore) CreateProvisioningRequest(ctx context.Context, req *db.TriggerProvisioningRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

func (m *memStore) GetProvisioningRequest(ctx context.Context, id uuid.UUID) (*db.TriggerProvisioningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("provisioning request %s: %w", id, db.ErrNotFound)
	}
	clone := *req
	return &clone, nil
}

func (m *memStore) GetOpenProvisioningRequest(ctx context.Context, module, action string) (*db.TriggerProvisioningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.requests {
		if req.BusinessModule == module && req.BusinessAction == action &&
			(req.Status == db.ProvisioningRequested || req.Status == db.ProvisioningDeveloping) {
			clone := *req
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("open provisioning request %s/%s: %w", module, action, db.ErrNotFound)
}

func (m *memStore) AdvanceProvisioningRequest(ctx context.Context, id uuid.UUID, fromStatus, toStatus string, notes, completedBy *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.advanceErr != nil {
		err := m.advanceErr
		m.advanceErr = nil
		return err
	}
	req, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("provisioning request %s: %w", id, db.ErrNotFound)
	}
	if req.Status != fromStatus {
		return fmt.Errorf("provisioning request %s (expected status %s): %w", id, fromStatus, db.ErrNotPending)
	}
	req.Status = toStatus
	req.DeveloperNotes = notes
	req.CompletedBy = completedBy
	if toStatus == db.ProvisioningCompleted || toStatus == db.ProvisioningRejected {
		now := time.Now()
		req.CompletedAt = &now
	}
	return nil
}

func (m *memStore) ListProvisioningRequests(ctx context.Context, status *string, limit, offset int) ([]db.TriggerProvisioningRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.TriggerProvisioningRequest
	for _, req := range m.requests {
		if status != nil && req.Status != *status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (m *memStore) GetTriggerByModuleAction(ctx context.Context, module, action string) (*db.OperationTrigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.triggers {
		if t.BusinessModule == module && t.BusinessAction == action {
			clone := *t
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("trigger %s/%s: %w", module, action, db.ErrNotFound)
}

func (m *memStore) CreateTrigger(ctx context.Context, t *db.OperationTrigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.triggers {
		if existing.OperationCode == t.OperationCode {
			return fmt.Errorf("duplicate key value violates unique constraint \"operation_triggers_operation_code_key\"")
		}
	}
	t.ID = uuid.New()
	clone := *t
	m.triggers = append(m.triggers, &clone)
	return nil
}

func requestParams() RequestParams {
	desc := "bulk deletion of customer records"
	return RequestParams{
		BusinessModule: "customer",
		BusinessAction: "bulk-delete",
		ProposedName:   "Customer bulk delete",
		Description:    &desc,
		ApproverRoles:  []string{"boss"},
		RequesterID:    "u-manager",
	}
}

func TestRequest_Validation(t *testing.T) {
	w := NewWorkflow(newMemStore())

	tests := []struct {
		name   string
		mutate func(*RequestParams)
	}{
		{"missing module", func(p *RequestParams) { p.BusinessModule = "" }},
		{"missing action", func(p *RequestParams) { p.BusinessAction = "" }},
		{"missing name", func(p *RequestParams) { p.ProposedName = "" }},
		{"missing requester", func(p *RequestParams) { p.RequesterID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := requestParams()
			tt.mutate(&params)
			_, err := w.Request(context.Background(), params)
			var verr *approval.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestRequest_RejectsDuplicateOpenRequest(t *testing.T) {
	w := NewWorkflow(newMemStore())
	ctx := context.Background()

	if _, err := w.Request(ctx, requestParams()); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	_, err := w.Request(ctx, requestParams())
	var verr *approval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for duplicate open request, got %v", err)
	}
}

func TestRequest_RejectsAlreadyGatedPair(t *testing.T) {
	store := newMemStore()
	store.triggers = append(store.triggers, &db.OperationTrigger{
		OperationCode:  "CUSTOMER_BULK_DELETE",
		BusinessModule: "customer",
		BusinessAction: "bulk-delete",
		Active:         true,
	})
	w := NewWorkflow(store)

	_, err := w.Request(context.Background(), requestParams())
	var verr *approval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for already gated pair, got %v", err)
	}
}

func TestAdvance_FullLifecycle(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(store)
	ctx := context.Background()

	req, err := w.Request(ctx, requestParams())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	/* Skipping developing is not allowed */
	_, err = w.Advance(ctx, req.ID, db.ProvisioningCompleted, nil, "u-dev")
	var serr *approval.InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected InvalidStateError for requested->completed, got %v", err)
	}

	if _, err = w.Advance(ctx, req.ID, db.ProvisioningDeveloping, nil, ""); err != nil {
		t.Fatalf("Advance to developing failed: %v", err)
	}

	notes := "wired into customer module release 26.9"
	final, err := w.Advance(ctx, req.ID, db.ProvisioningCompleted, &notes, "u-dev")
	if err != nil {
		t.Fatalf("Advance to completed failed: %v", err)
	}
	if final.Status != db.ProvisioningCompleted {
		t.Errorf("Expected completed status, got %s", final.Status)
	}
	if final.CompletedBy == nil || *final.CompletedBy != "u-dev" {
		t.Errorf("CompletedBy not recorded: %+v", final)
	}

	/* Completion materialized the trigger */
	trigger, err := store.GetTriggerByModuleAction(ctx, "customer", "bulk-delete")
	if err != nil {
		t.Fatalf("Expected materialized trigger: %v", err)
	}
	if trigger.OperationCode != "CUSTOMER_BULK_DELETE" {
		t.Errorf("Unexpected operation code %s", trigger.OperationCode)
	}
	if !trigger.Active || !trigger.RequiresApproval {
		t.Errorf("Materialized trigger must be active and gating: %+v", trigger)
	}

	/* Re-requesting the pair is now blocked by the trigger */
	_, err = w.Request(ctx, requestParams())
	var verr *approval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError after trigger exists, got %v", err)
	}
}

func TestAdvance_CompletionRetryAfterStatusWriteFailure(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(store)
	ctx := context.Background()

	req, err := w.Request(ctx, requestParams())
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if _, err = w.Advance(ctx, req.ID, db.ProvisioningDeveloping, nil, ""); err != nil {
		t.Fatalf("Advance to developing failed: %v", err)
	}

	/* The trigger lands but the terminal status write fails */
	store.advanceErr = fmt.Errorf("connection reset")
	if _, err = w.Advance(ctx, req.ID, db.ProvisioningCompleted, nil, "u-dev"); err == nil {
		t.Fatal("Expected failure from the status write")
	}
	if len(store.triggers) != 1 {
		t.Fatalf("Expected trigger from the first attempt, got %d", len(store.triggers))
	}

	/* The retry must complete rather than trip the unique code */
	final, err := w.Advance(ctx, req.ID, db.ProvisioningCompleted, nil, "u-dev")
	if err != nil {
		t.Fatalf("Completion retry failed: %v", err)
	}
	if final.Status != db.ProvisioningCompleted {
		t.Errorf("Expected completed status, got %s", final.Status)
	}
	if len(store.triggers) != 1 {
		t.Errorf("Expected exactly one trigger after retry, got %d", len(store.triggers))
	}
}

func TestAdvance_Reject(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(store)
	ctx := context.Background()

	req, _ := w.Request(ctx, requestParams())

	reason := "covered by an existing gate"
	final, err := w.Advance(ctx, req.ID, db.ProvisioningRejected, &reason, "u-dev")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if final.Status != db.ProvisioningRejected {
		t.Errorf("Expected rejected status, got %s", final.Status)
	}
	if len(store.triggers) != 0 {
		t.Error("Rejection must not materialize a trigger")
	}

	/* Terminal states accept no further transitions */
	_, err = w.Advance(ctx, req.ID, db.ProvisioningDeveloping, nil, "")
	var serr *approval.InvalidStateError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected InvalidStateError from terminal state, got %v", err)
	}

	/* The pair is free again once the request is rejected */
	if _, err := w.Request(ctx, requestParams()); err != nil {
		t.Fatalf("Re-request after rejection failed: %v", err)
	}
}

func TestAdvance_TerminalRequiresActor(t *testing.T) {
	w := NewWorkflow(newMemStore())
	ctx := context.Background()

	req, _ := w.Request(ctx, requestParams())
	_, err := w.Advance(ctx, req.ID, db.ProvisioningRejected, nil, "")
	var verr *approval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError for missing actor, got %v", err)
	}
}

func TestAdvance_UnknownID(t *testing.T) {
	w := NewWorkflow(newMemStore())

	_, err := w.Advance(context.Background(), uuid.New(), db.ProvisioningDeveloping, nil, "")
	var nerr *approval.NotFoundError
	if !errors.As(err, &nerr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestOperationCode(t *testing.T) {
	tests := []struct {
		module, action, want string
	}{
		{"customer", "bulk-delete", "CUSTOMER_BULK_DELETE"},
		{"invoice", "adjust", "INVOICE_ADJUST"},
		{"Supplier", "Delete", "SUPPLIER_DELETE"},
	}
	for _, tt := range tests {
		if got := OperationCode(tt.module, tt.action); got != tt.want {
			t.Errorf("OperationCode(%s, %s) = %s, want %s", tt.module, tt.action, got, tt.want)
		}
	}
}
