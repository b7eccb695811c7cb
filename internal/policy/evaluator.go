/*-------------------------------------------------------------------------
 *
 * evaluator.go
 *    Approval policy evaluation
 *
 * Decides whether an operation code requires human approval: looks up
 * the active trigger and evaluates its condition against the call-site
 * context. Side-effect free; safe to call speculatively.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/policy/evaluator.go
 *
 *-------------------------------------------------------------------------
 */

package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

/* TriggerSource supplies active trigger records */
type TriggerSource interface {
	GetActiveTrigger(ctx context.Context, operationCode string) (*db.OperationTrigger, error)
}

/* EvalContext carries call-site data the trigger condition may inspect */
type EvalContext struct {
	Amount     *float64
	BusinessID string
	Extra      map[string]interface{}
}

/* Decision is the evaluation outcome. Trigger is non-nil only when
 * Required is true, so callers can attach category and approver-role
 * metadata to the request they create. */
type Decision struct {
	Required bool
	Trigger  *db.OperationTrigger
}

type Evaluator struct {
	triggers  TriggerSource
	threshold float64
}

/* DefaultFinanceThreshold is the fallback when no threshold is configured */
const DefaultFinanceThreshold = 100000

func NewEvaluator(triggers TriggerSource, financeThreshold float64) *Evaluator {
	if financeThreshold <= 0 {
		financeThreshold = DefaultFinanceThreshold
	}
	return &Evaluator{triggers: triggers, threshold: financeThreshold}
}

/* Evaluate decides whether operationCode requires approval given ec */
func (e *Evaluator) Evaluate(ctx context.Context, operationCode string, ec EvalContext) (Decision, error) {
	trigger, err := e.triggers.GetActiveTrigger(ctx, operationCode)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			metrics.RecordPolicyEvaluation(operationCode, "no_trigger")
			return Decision{Required: false}, nil
		}
		return Decision{}, fmt.Errorf("trigger lookup failed: code=%s, error=%w", operationCode, err)
	}

	if !trigger.RequiresApproval {
		metrics.RecordPolicyEvaluation(operationCode, "not_required")
		return Decision{Required: false}, nil
	}

	if !e.conditionMet(trigger, ec) {
		metrics.RecordPolicyEvaluation(operationCode, "below_threshold")
		return Decision{Required: false}, nil
	}

	metrics.RecordPolicyEvaluation(operationCode, "required")
	return Decision{Required: true, Trigger: trigger}, nil
}

/* conditionMet evaluates the trigger condition. A trigger without a
 * condition always fires. An amount equal to the threshold meets it. */
func (e *Evaluator) conditionMet(trigger *db.OperationTrigger, ec EvalContext) bool {
	if trigger.TriggerCondition == nil || *trigger.TriggerCondition == "" {
		return true
	}

	switch *trigger.TriggerCondition {
	case db.ConditionAmountThreshold:
		if trigger.Category != db.CategoryFinance {
			return true
		}
		/* A missing amount cannot be proven below threshold, so it gates */
		if ec.Amount == nil {
			return true
		}
		return *ec.Amount >= e.threshold
	default:
		/* Unknown condition kinds gate conservatively */
		return true
	}
}
