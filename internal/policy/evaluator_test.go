package policy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
)

type fakeTriggerSource struct {
	triggers map[string]*db.OperationTrigger
	err      error
}

func (f *fakeTriggerSource) GetActiveTrigger(ctx context.Context, code string) (*db.OperationTrigger, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.triggers[code]
	if !ok {
		return nil, fmt.Errorf("active trigger %s: %w", code, db.ErrNotFound)
	}
	return t, nil
}

func amountCondition() *string {
	c := db.ConditionAmountThreshold
	return &c
}

func TestEvaluate_NoTrigger(t *testing.T) {
	e := NewEvaluator(&fakeTriggerSource{triggers: map[string]*db.OperationTrigger{}}, 0)

	decision, err := e.Evaluate(context.Background(), "CUSTOMER_DELETE", EvalContext{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Required {
		t.Error("Expected approval not required when no trigger exists")
	}
	if decision.Trigger != nil {
		t.Error("Expected nil trigger in decision")
	}
}

func TestEvaluate_TriggerNotRequiringApproval(t *testing.T) {
	src := &fakeTriggerSource{triggers: map[string]*db.OperationTrigger{
		"PORT_UPDATE": {
			OperationCode:    "PORT_UPDATE",
			Category:         db.CategoryBusiness,
			RequiresApproval: false,
			Active:           true,
		},
	}}
	e := NewEvaluator(src, 0)

	decision, err := e.Evaluate(context.Background(), "PORT_UPDATE", EvalContext{})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.Required {
		t.Error("Expected approval not required when trigger does not require it")
	}
}

func TestEvaluate_FinanceThreshold(t *testing.T) {
	src := &fakeTriggerSource{triggers: map[string]*db.OperationTrigger{
		"INVOICE_ADJUST": {
			OperationCode:    "INVOICE_ADJUST",
			Category:         db.CategoryFinance,
			RequiresApproval: true,
			TriggerCondition: amountCondition(),
			Active:           true,
		},
	}}
	e := NewEvaluator(src, 50000)

	tests := []struct {
		name     string
		amount   *float64
		required bool
	}{
		{"below threshold", floatPtr(49999.99), false},
		{"at threshold", floatPtr(50000), true},
		{"above threshold", floatPtr(50000.01), true},
		{"missing amount gates", nil, true},
		{"zero amount", floatPtr(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := e.Evaluate(context.Background(), "INVOICE_ADJUST", EvalContext{Amount: tt.amount})
			if err != nil {
				t.Fatalf("Evaluate failed: %v", err)
			}
			if decision.Required != tt.required {
				t.Errorf("Required = %v, want %v", decision.Required, tt.required)
			}
			if tt.required && decision.Trigger == nil {
				t.Error("Expected trigger metadata in required decision")
			}
		})
	}
}

func TestEvaluate_ThresholdConditionOnNonFinanceTrigger(t *testing.T) {
	/* An amount condition on a non-finance trigger always gates */
	src := &fakeTriggerSource{triggers: map[string]*db.OperationTrigger{
		"SUPPLIER_DELETE": {
			OperationCode:    "SUPPLIER_DELETE",
			Category:         db.CategoryBusiness,
			RequiresApproval: true,
			TriggerCondition: amountCondition(),
			Active:           true,
		},
	}}
	e := NewEvaluator(src, 50000)

	decision, err := e.Evaluate(context.Background(), "SUPPLIER_DELETE", EvalContext{Amount: floatPtr(1)})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !decision.Required {
		t.Error("Expected non-finance trigger to gate regardless of amount")
	}
}

func TestEvaluate_DefaultThresholdFallback(t *testing.T) {
	src := &fakeTriggerSource{triggers: map[string]*db.OperationTrigger{
		"BILL_WRITE_OFF": {
			OperationCode:    "BILL_WRITE_OFF",
			Category:         db.CategoryFinance,
			RequiresApproval: true,
			TriggerCondition: amountCondition(),
			Active:           true,
		},
	}}
	e := NewEvaluator(src, 0)

	decision, err := e.Evaluate(context.Background(), "BILL_WRITE_OFF",
		EvalContext{Amount: floatPtr(DefaultFinanceThreshold)})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !decision.Required {
		t.Error("Expected default threshold to apply when none is configured")
	}
}

func TestEvaluate_SourceError(t *testing.T) {
	e := NewEvaluator(&fakeTriggerSource{err: errors.New("connection refused")}, 0)

	_, err := e.Evaluate(context.Background(), "SUPPLIER_DELETE", EvalContext{})
	if err == nil {
		t.Fatal("Expected error when the trigger source fails")
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
