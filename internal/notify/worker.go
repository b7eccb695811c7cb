/*-------------------------------------------------------------------------
 *
 * worker.go
 *    Background notification delivery worker
 *
 * Drains the notification queue with a worker pool and delivers each
 * notification through the configured sinks. Graceful shutdown via
 * Stop. Delivery order relative to request visibility is not
 * guaranteed and must not be relied on.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/notify/worker.go
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"context"
	"sync"
	"time"

	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/db"
	"github.com/FrankZheng1985/sysafari-logistics-sub010/internal/metrics"
)

/* maxDeliveryAttempts before a notification is marked failed */
const maxDeliveryAttempts = 3

/* Queue supplies claimable notifications and records delivery outcomes */
type Queue interface {
	ClaimNotification(ctx context.Context) (*db.Notification, error)
	MarkNotificationSent(ctx context.Context, id int64) error
	MarkNotificationFailed(ctx context.Context, id int64, deliveryErr string, maxAttempts int) error
	GetUser(ctx context.Context, id string) (*db.User, error)
}

type Worker struct {
	queue        Queue
	webhook      *WebhookSink
	email        *EmailSink
	workers      int
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewWorker(queue Queue, webhook *WebhookSink, email *EmailSink, workers int, pollInterval time.Duration) *Worker {
	if workers <= 0 {
		workers = 1
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		queue:        queue,
		webhook:      webhook,
		email:        email,
		workers:      workers,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *Worker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.work()
	}
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) work() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			for {
				notification, err := w.queue.ClaimNotification(w.ctx)
				if err != nil || notification == nil {
					break
				}
				w.deliver(notification)
			}
		}
	}
}

func (w *Worker) deliver(n *db.Notification) {
	ctx, cancel := context.WithTimeout(w.ctx, 60*time.Second)
	defer cancel()

	err := w.deliverOnce(ctx, n)
	if err != nil {
		metrics.RecordNotification("delivery", "failed")
		metrics.WarnWithContext(ctx, "Notification delivery failed", map[string]interface{}{
			"notification_id": n.ID,
			"recipient":       n.RecipientID,
			"attempt":         n.Attempts,
			"error":           err.Error(),
		})
		if markErr := w.queue.MarkNotificationFailed(ctx, n.ID, err.Error(), maxDeliveryAttempts); markErr != nil {
			metrics.ErrorWithContext(ctx, "Failed to record notification failure", markErr, map[string]interface{}{
				"notification_id": n.ID,
			})
		}
		return
	}

	metrics.RecordNotification("delivery", "sent")
	if markErr := w.queue.MarkNotificationSent(ctx, n.ID); markErr != nil {
		metrics.ErrorWithContext(ctx, "Failed to record notification delivery", markErr, map[string]interface{}{
			"notification_id": n.ID,
		})
	}
}

/* deliverOnce tries the webhook sink first, then email. A notification
 * with no usable sink counts as delivered: the queue entry is the
 * in-app notification of record. */
func (w *Worker) deliverOnce(ctx context.Context, n *db.Notification) error {
	delivered := false

	if w.webhook != nil && w.webhook.Enabled() {
		if err := w.webhook.Send(ctx, n.RecipientID, n.Title, n.Body, n.CorrelationID.String()); err != nil {
			return err
		}
		delivered = true
	}

	if w.email != nil && w.email.Enabled() {
		recipient, err := w.queue.GetUser(ctx, n.RecipientID)
		if err == nil && recipient.Email != nil && *recipient.Email != "" {
			if err := w.email.Send(ctx, *recipient.Email, n.Title, n.Body); err != nil && !delivered {
				return err
			}
		}
	}

	return nil
}
