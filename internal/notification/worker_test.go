package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"foodai-backend/internal/logger"
	"foodai-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type mockEmail struct {
	mu   sync.Mutex
	sent []Email
	wg   *sync.WaitGroup
}

func (m *mockEmail) Send(_ context.Context, e Email) (json.RawMessage, error) {
	m.mu.Lock()
	m.sent = append(m.sent, e)
	m.mu.Unlock()
	if m.wg != nil {
		m.wg.Done()
	}
	return json.RawMessage(`{"ok":true}`), nil
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func emptyBody(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, 4, store.NewGormStore(db), &mockEmail{}, &webpush.Options{}, logger.Nop())

	require.NoError(t, wp.Dispatch(context.Background(), Job{Email: &Email{To: "a@example.com"}}))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, "a@example.com", job.Email.To)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchAfterStop(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, 1, store.NewGormStore(db), &mockEmail{}, nil, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	cancel()
	time.Sleep(20 * time.Millisecond)

	// Fill the queue; the next dispatch cannot block forever.
	wp.jobs <- Job{}
	err := wp.Dispatch(context.Background(), Job{Email: &Email{To: "late@example.com"}})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestWorkerPool_Email(t *testing.T) {
	db, _ := newTestDB(t)
	var wg sync.WaitGroup
	email := &mockEmail{wg: &wg}
	wp := NewWorkerPool(2, 4, store.NewGormStore(db), email, nil, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	wg.Add(2)
	require.NoError(t, wp.Dispatch(ctx, Job{Email: &Email{To: "guest@example.com", Subject: "s", HTML: "<p>x</p>"}}))
	require.NoError(t, wp.Dispatch(ctx, Job{Email: &Email{To: "owner@example.com", Subject: "s", HTML: "<p>y</p>"}}))
	wg.Wait()

	email.mu.Lock()
	defer email.mu.Unlock()
	assert.Len(t, email.sent, 2)
}

func TestWorkerPool_Push(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, 4, store.NewGormStore(gormDB), &mockEmail{}, &webpush.Options{}, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
				assert.JSONEq(t, `{"title":"Reservación modificada","body":"Ana: 2025-07-01 20:00"}`, string(payload))
				wg.Done()
				return emptyBody(http.StatusCreated), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE restaurant_id = \$1`).
			WithArgs("r-1").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "restaurant_id", "created_at"}).
				AddRow("https://example.com/push", "test_p256dh", "test_auth", "r-1", time.Now()))

		require.NoError(t, wp.Dispatch(ctx, Job{Push: &Push{RestaurantID: "r-1", Title: "Reservación modificada", Body: "Ana: 2025-07-01 20:00"}}))
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return emptyBody(http.StatusGone), nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "push_subscriptions" WHERE restaurant_id = \$1`).
			WithArgs("r-2").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "restaurant_id", "created_at"}).
				AddRow("https://example.com/expired", "p", "a", "r-2", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, wp.Dispatch(ctx, Job{Push: &Push{RestaurantID: "r-2", Title: "t", Body: "b"}}))

		assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
	})
}
