/*-------------------------------------------------------------------------
 *
 * notification_queries.go
 *    Database queries for the notification queue
 *
 * Claiming uses FOR UPDATE SKIP LOCKED so concurrent delivery workers
 * never pick the same notification.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/db/notification_queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

/* Notification queries */
const (
	createNotificationQuery = `
		INSERT INTO sysafari_approval.notifications
		(recipient_id, title, body, correlation_id, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id, created_at`

	claimNotificationQuery = `
		UPDATE sysafari_approval.notifications
		SET attempts = attempts + 1
		WHERE id = (
			SELECT id FROM sysafari_approval.notifications
			WHERE status = 'pending'
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING *`

	markNotificationSentQuery = `
		UPDATE sysafari_approval.notifications
		SET status = 'sent', sent_at = NOW(), last_error = NULL
		WHERE id = $1`

	markNotificationFailedQuery = `
		UPDATE sysafari_approval.notifications
		SET status = CASE WHEN attempts >= $3 THEN 'failed' ELSE 'pending' END,
			last_error = $2
		WHERE id = $1`
)

func (q *Queries) CreateNotification(ctx context.Context, n *Notification) error {
	err := q.DB.GetContext(ctx, n, createNotificationQuery,
		n.RecipientID, n.Title, n.Body, n.CorrelationID)
	if err != nil {
		return fmt.Errorf("notification creation failed: recipient=%s, error=%w", n.RecipientID, err)
	}
	return nil
}

/* ClaimNotification claims one pending notification, or returns nil when
 * the queue is empty */
func (q *Queries) ClaimNotification(ctx context.Context) (*Notification, error) {
	var n Notification
	err := q.DB.GetContext(ctx, &n, claimNotificationQuery)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim notification: %w", err)
	}
	return &n, nil
}

func (q *Queries) MarkNotificationSent(ctx context.Context, id int64) error {
	_, err := q.DB.ExecContext(ctx, markNotificationSentQuery, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: id=%d, error=%w", id, err)
	}
	return nil
}

/* MarkNotificationFailed records a delivery failure; the notification
 * returns to pending until maxAttempts is reached */
func (q *Queries) MarkNotificationFailed(ctx context.Context, id int64, deliveryErr string, maxAttempts int) error {
	_, err := q.DB.ExecContext(ctx, markNotificationFailedQuery, id, deliveryErr, maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: id=%d, error=%w", id, err)
	}
	return nil
}
