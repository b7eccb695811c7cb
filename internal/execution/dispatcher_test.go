package execution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

type fakeResultStore struct {
	mu       sync.Mutex
	recorded map[uuid.UUID]db.JSONBMap
	executed map[uuid.UUID]bool
	err      error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{
		recorded: make(map[uuid.UUID]db.JSONBMap),
		executed: make(map[uuid.UUID]bool),
	}
}

func (f *fakeResultStore) MarkApprovalExecuted(ctx context.Context, id uuid.UUID, executed bool, executedAt *time.Time, result db.JSONBMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recorded[id] = result
	f.executed[id] = executed
	return nil
}

func approvedRequest(code string) *db.ApprovalRequest {
	return &db.ApprovalRequest{
		ID:            uuid.New(),
		OperationCode: code,
		Category:      db.CategoryBusiness,
		Status:        db.StatusApproved,
		RequestData:   db.JSONBMap{"supplierId": "SUP-001"},
	}
}

func TestExecute_RegisteredHandler(t *testing.T) {
	store := newFakeResultStore()
	d := NewDispatcher(store)

	invocations := 0
	d.Register(OpSupplierDelete, HandlerFunc(func(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
		invocations++
		return Result{Output: map[string]interface{}{"deleted": req.RequestData["supplierId"]}}, nil
	}))

	req := approvedRequest(OpSupplierDelete)
	result := d.Execute(context.Background(), req)

	if !result.Success {
		t.Errorf("Expected success, got %+v", result)
	}
	if invocations != 1 {
		t.Errorf("Expected 1 invocation, got %d", invocations)
	}
	if !req.Executed {
		t.Error("Expected execution flag set on request")
	}
	if !store.executed[req.ID] {
		t.Error("Expected execution flag recorded in store")
	}
}

func TestExecute_IdempotentPerRequest(t *testing.T) {
	store := newFakeResultStore()
	d := NewDispatcher(store)

	invocations := 0
	d.Register(OpSupplierDelete, HandlerFunc(func(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
		invocations++
		return Result{Output: map[string]interface{}{"deleted": "SUP-001"}}, nil
	}))

	req := approvedRequest(OpSupplierDelete)
	first := d.Execute(context.Background(), req)
	second := d.Execute(context.Background(), req)

	if invocations != 1 {
		t.Fatalf("Expected exactly 1 mutation, got %d", invocations)
	}
	if !second.Success {
		t.Errorf("Expected stored result on second call, got %+v", second)
	}
	if first.Output["deleted"] != second.Output["deleted"] {
		t.Errorf("Second call returned different result: %+v vs %+v", first, second)
	}
}

func TestExecute_UnknownCodeIsManual(t *testing.T) {
	store := newFakeResultStore()
	d := NewDispatcher(store)

	req := approvedRequest("TARIFF_OVERRIDE")
	result := d.Execute(context.Background(), req)

	if result.Success {
		t.Error("Manual result must not claim success")
	}
	if !result.Manual {
		t.Error("Expected manual execution result for unknown operation code")
	}
	if req.Executed {
		t.Error("Manual result must not set the execution flag")
	}
	if store.executed[req.ID] {
		t.Error("Manual result must not record executed=true")
	}
}

func TestExecute_CategoryFallback(t *testing.T) {
	store := newFakeResultStore()
	d := NewDispatcher(store)

	d.RegisterCategory(db.CategoryBusiness, HandlerFunc(func(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
		return Result{Output: map[string]interface{}{"handled_by": "category"}}, nil
	}))

	req := approvedRequest("CUSTOMER_MERGE")
	result := d.Execute(context.Background(), req)

	if !result.Success {
		t.Fatalf("Expected category fallback to execute, got %+v", result)
	}
	if result.Output["handled_by"] != "category" {
		t.Errorf("Expected category handler, got %+v", result.Output)
	}
}

func TestExecute_HandlerErrorRecordedNotExecuted(t *testing.T) {
	store := newFakeResultStore()
	d := NewDispatcher(store)

	d.Register(OpSupplierDelete, HandlerFunc(func(ctx context.Context, req *db.ApprovalRequest) (Result, error) {
		return Result{}, errors.New("supplier service unavailable")
	}))

	req := approvedRequest(OpSupplierDelete)
	result := d.Execute(context.Background(), req)

	if result.Success {
		t.Error("Expected failure result")
	}
	if req.Executed {
		t.Error("Failed execution must leave the execution flag false")
	}
	if result.Message == "" {
		t.Error("Expected error message in result")
	}
	if store.recorded[req.ID] == nil {
		t.Error("Expected failure recorded on the request")
	}
}

func TestValidatePayload(t *testing.T) {
	RegisterDefaultSchemas()

	tests := []struct {
		name    string
		code    string
		data    db.JSONBMap
		wantErr bool
	}{
		{"valid supplier delete", OpSupplierDelete, db.JSONBMap{"supplierId": "SUP-9"}, false},
		{"missing supplier id", OpSupplierDelete, db.JSONBMap{"reason": "dup"}, true},
		{"valid permission grant", OpPermissionGrant, db.JSONBMap{"targetUserId": "u1", "permissionCode": "customer.export"}, false},
		{"missing permission code", OpPermissionGrant, db.JSONBMap{"targetUserId": "u1"}, true},
		{"valid invoice adjust", OpInvoiceAdjust, db.JSONBMap{"invoiceId": "INV-1", "amount": 120000.0, "currency": "USD"}, false},
		{"zero amount", OpInvoiceAdjust, db.JSONBMap{"invoiceId": "INV-1", "amount": 0}, true},
		{"unregistered code accepts anything", "CUSTOM_OP", db.JSONBMap{"whatever": true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.code, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePayload(%s) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}
