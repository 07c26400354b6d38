// Package notification delivers reschedule notices by email and web push
// from a pool of background workers.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"foodai-backend/internal/logger"
	"foodai-backend/internal/model"
	"foodai-backend/internal/store"
)

// ErrPoolStopped is returned by Dispatch once the pool's context is done.
var ErrPoolStopped = errors.New("notification pool stopped")

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Push is a browser notification for every subscriber of a restaurant.
type Push struct {
	RestaurantID string `json:"-"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	URL          string `json:"url,omitempty"`
}

// Job is one unit of work. Exactly one field is set.
type Job struct {
	Email *Email
	Push  *Push
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
	email   EmailSender
	log     *logger.Logger
	done    <-chan struct{}
}

// NewWorkerPool creates a new worker pool. A nil webpushOptions disables push jobs.
func NewWorkerPool(size, queueSize int, s store.Store, email EmailSender, webpushOptions *webpush.Options, log *logger.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, max(queueSize, size)),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		email:   email,
		log:     log.With("service", "notification"),
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	wp.done = ctx.Done()
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debug("worker started", "worker", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.process(ctx, job)
		case <-ctx.Done():
			wp.log.Debug("worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues a job, blocking while the queue is full.
func (wp *WorkerPool) Dispatch(ctx context.Context, job Job) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.done:
		return ErrPoolStopped
	}
}

func (wp *WorkerPool) process(ctx context.Context, job Job) {
	switch {
	case job.Email != nil:
		if _, err := wp.email.Send(ctx, *job.Email); err != nil {
			wp.log.Warn("email delivery failed", "to", job.Email.To, "subject", job.Email.Subject, "error", err)
			return
		}
		wp.log.Info("email sent", "to", job.Email.To, "subject", job.Email.Subject)
	case job.Push != nil:
		wp.sendNotificationsForRestaurant(ctx, *job.Push)
	}
}

// sendNotificationsForRestaurant fans a push message out to every subscription of the restaurant.
func (wp *WorkerPool) sendNotificationsForRestaurant(ctx context.Context, p Push) {
	if wp.webpush == nil {
		wp.log.Debug("push disabled, dropping notification", "restaurant_id", p.RestaurantID)
		return
	}
	subscriptions, err := wp.store.ListPushSubscriptions(ctx, p.RestaurantID)
	if err != nil {
		wp.log.Error("fetching push subscriptions failed", "restaurant_id", p.RestaurantID, "error", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(p)
	if err != nil {
		wp.log.Error("encoding push payload failed", "error", err)
		return
	}
	wp.log.Info("sending push notifications", "restaurant_id", p.RestaurantID, "count", len(subscriptions))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("push delivery failed", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.log.Info("push subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("deleting expired subscription failed", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
