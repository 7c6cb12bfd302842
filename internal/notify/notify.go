// Package notify is the notification-dispatch collaborator boundary. The
// core only enqueues; delivery mechanics live elsewhere. Enqueueing is
// fire-and-forget and duplicate-tolerant: at-least-once fan-out may repeat
// a notification, but a systemic silent drop is a bug.
package notify

import (
	"context"

	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/repositories"
)

// Dispatcher enqueues notifications for delivery.
type Dispatcher interface {
	Enqueue(ctx context.Context, n models.Notification) error
	// EnqueueBatch enqueues best-effort and returns how many were accepted;
	// partial success is normal.
	EnqueueBatch(ctx context.Context, ns []models.Notification) (int, error)
}

// DurableDispatcher persists notifications as rows; the delivery pipeline
// drains them out of band.
type DurableDispatcher struct {
	repo repositories.NotificationRepository
}

// NewDurableDispatcher creates a dispatcher over the notification repository.
func NewDurableDispatcher(repo repositories.NotificationRepository) *DurableDispatcher {
	return &DurableDispatcher{repo: repo}
}

func (d *DurableDispatcher) Enqueue(ctx context.Context, n models.Notification) error {
	return d.repo.CreateNotification(&n)
}

func (d *DurableDispatcher) EnqueueBatch(ctx context.Context, ns []models.Notification) (int, error) {
	return d.repo.CreateBatch(ns)
}
