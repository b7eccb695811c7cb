/*-------------------------------------------------------------------------
 *
 * dispatcher.go
 *    Notification dispatch for approval events
 *
 * Enqueues notifications to eligible approvers when a request is
 * created and to the applicant when it is decided. Strictly
 * fire-and-forget: failures are logged and never surface to the caller
 * of create or decide.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/notify/dispatcher.go
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"context"
	"fmt"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/roles"
)

/* Store supplies recipients and accepts queued notifications */
type Store interface {
	CreateNotification(ctx context.Context, n *db.Notification) error
	ListUsersByRoles(ctx context.Context, roleCodes []string) ([]db.User, error)
}

type Dispatcher struct {
	store Store
}

func NewDispatcher(store Store) *Dispatcher {
	return &Dispatcher{store: store}
}

/* NotifyApprovers enqueues one notification per user whose role is in
 * the trigger's approver-role set. A trigger without approver roles
 * falls back to all admins. */
func (d *Dispatcher) NotifyApprovers(ctx context.Context, req *db.ApprovalRequest, trigger *db.OperationTrigger) {
	approverRoles := []string{roles.RoleAdmin}
	if trigger != nil && len(trigger.ApproverRoles) > 0 {
		approverRoles = trigger.ApproverRoles
	}

	approvers, err := d.store.ListUsersByRoles(ctx, approverRoles)
	if err != nil {
		metrics.RecordNotification("approvers", "failed")
		metrics.ErrorWithContext(ctx, "Failed to resolve approvers for notification", err, map[string]interface{}{
			"approval_id":    req.ID.String(),
			"approver_roles": approverRoles,
		})
		return
	}

	title := fmt.Sprintf("Approval required: %s", req.Title)
	body := fmt.Sprintf("A %s request (%s) by %s is awaiting your decision.",
		req.Category, req.OperationCode, req.ApplicantID)

	for _, approver := range approvers {
		n := &db.Notification{
			RecipientID:   approver.ID,
			Title:         title,
			Body:          body,
			CorrelationID: req.ID,
		}
		if err := d.store.CreateNotification(ctx, n); err != nil {
			metrics.RecordNotification("approvers", "failed")
			metrics.ErrorWithContext(ctx, "Failed to enqueue approver notification", err, map[string]interface{}{
				"approval_id": req.ID.String(),
				"recipient":   approver.ID,
			})
			continue
		}
		metrics.RecordNotification("approvers", "enqueued")
	}
}

/* NotifyApplicant enqueues one notification to the original applicant
 * with the decision outcome */
func (d *Dispatcher) NotifyApplicant(ctx context.Context, req *db.ApprovalRequest, outcome string, comment *string) {
	title := fmt.Sprintf("Request %s: %s", outcome, req.Title)
	body := fmt.Sprintf("Your %s request (%s) was %s.", req.Category, req.OperationCode, outcome)
	if comment != nil && *comment != "" {
		body = fmt.Sprintf("%s Comment: %s", body, *comment)
	}

	n := &db.Notification{
		RecipientID:   req.ApplicantID,
		Title:         title,
		Body:          body,
		CorrelationID: req.ID,
	}
	if err := d.store.CreateNotification(ctx, n); err != nil {
		metrics.RecordNotification("applicant", "failed")
		metrics.ErrorWithContext(ctx, "Failed to enqueue applicant notification", err, map[string]interface{}{
			"approval_id": req.ID.String(),
			"recipient":   req.ApplicantID,
		})
		return
	}
	metrics.RecordNotification("applicant", "enqueued")
}
