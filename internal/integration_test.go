package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"foodai-backend/internal/ai"
	"foodai-backend/internal/analytics"
	"foodai-backend/internal/api"
	"foodai-backend/internal/booking"
	"foodai-backend/internal/db"
	"foodai-backend/internal/demand"
	"foodai-backend/internal/logger"
	"foodai-backend/internal/model"
	"foodai-backend/internal/notification"
	"foodai-backend/internal/store"
)

func call(t *testing.T, r http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

// TestReservationLifecycle runs the service against a SQLite database:
// seed history, train, predict, summarize, then reschedule an upcoming booking.
func TestReservationLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: db.NewGormLogger(logger.Nop()),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	restaurants := []model.Restaurant{
		{ID: "r-1", Name: "Casa Luna", City: "Santo Domingo", CuisineType: "dominicana", Email: "owner@casaluna.do"},
		{ID: "r-2", Name: "Sakura", City: "Santiago", CuisineType: "japonesa", Email: "hola@sakura.do"},
	}
	require.NoError(t, testDB.Create(&restaurants).Error)

	var rows []model.Reservation
	for i := 0; i < 30; i++ {
		hour, status := 13, model.StatusCompleted
		if i%3 == 2 {
			hour, status = 21, model.StatusCancelled
		}
		rows = append(rows, model.Reservation{
			ID:              fmt.Sprintf("hist-%02d", i),
			RestaurantID:    restaurants[i%2].ID,
			ReservationDate: fmt.Sprintf("2025-05-%02d", 1+i),
			ReservationTime: fmt.Sprintf("%02d:00:00", hour),
			GuestsCount:     2 + i%4,
			Status:          status,
			CustomerCity:    "Santo Domingo",
		})
	}
	upcomingDate := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
	rows = append(rows, model.Reservation{
		ID:              "upcoming",
		RestaurantID:    "r-1",
		ReservationDate: upcomingDate,
		ReservationTime: "20:00:00",
		GuestsCount:     2,
		Status:          model.StatusConfirmed,
		CustomerName:    "Ana",
		CustomerEmail:   "ana@example.com",
	})
	require.NoError(t, testDB.Create(&rows).Error)

	var emails atomic.Int32
	emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emails.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg"}`))
	}))
	defer emailServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.Nop()
	gormStore := store.NewGormStore(testDB)
	emailClient := notification.NewEmailClient(emailServer.URL, 2*time.Second)
	pool := notification.NewWorkerPool(2, 8, gormStore, emailClient, nil, log)
	pool.Start(ctx)

	handler := api.NewHandler(api.Deps{
		Store:     gormStore,
		AI:        ai.NewService(gormStore, ai.MemoryStore{}, ai.TrainConfig{MinRows: 10, NumTrees: 25, Seed: 42, TestRatio: 0.2}, log),
		Analytics: analytics.NewService(gormStore, log),
		Booking: booking.NewService(gormStore, pool, booking.Rules{
			Location: time.UTC, OpenHour: 12, CloseHour: 22, MaxAdvanceDays: 90, MinLead: 24 * time.Hour, SlotCapacity: 5,
		}, log),
		Demand: demand.Coefficients{Base: 100, DayPenalty: 1, HolidayMultiplier: 1.2, ReferenceTempC: 25, TempSlope: 1.5},
		Email:  emailClient,
		Log:    log,
	})
	router := api.NewRouter(handler, api.RouterConfig{CacheTTL: time.Minute})

	t.Run("Train and predict", func(t *testing.T) {
		status, body := call(t, router, http.MethodPost, "/api/v1/ia/entrenar", nil)
		require.Equal(t, http.StatusOK, status, body)
		assert.EqualValues(t, 30, body["muestras"])

		status, body = call(t, router, http.MethodGet, "/api/v1/ia/predecir?restaurant_id=r-1&invitados=2&hora=13&dia_semana=2", nil)
		require.Equal(t, http.StatusOK, status, body)
		assert.Contains(t, []any{"confirmed", "cancelled", "completed"}, body["estado_estimado"])
	})

	t.Run("Summary counts add up", func(t *testing.T) {
		status, body := call(t, router, http.MethodGet, "/api/v1/analisis/resumen", nil)
		require.Equal(t, http.StatusOK, status, body)
		total := body["total_reservations"].(float64)
		sum := body["pending"].(float64) + body["confirmed"].(float64) + body["completed"].(float64) +
			body["cancelled"].(float64) + body["other"].(float64)
		assert.Equal(t, 31.0, total)
		assert.Equal(t, total, sum)
	})

	t.Run("Recommendations favour lunch", func(t *testing.T) {
		status, body := call(t, router, http.MethodGet, "/api/v1/ia/recomendar", nil)
		require.Equal(t, http.StatusOK, status, body)
		assert.EqualValues(t, 13, body["mejor_hora_general"])
	})

	t.Run("Reschedule updates the row and sends emails", func(t *testing.T) {
		target := time.Now().UTC().AddDate(0, 0, 9).Format("2006-01-02")
		status, body := call(t, router, http.MethodPut, "/api/v1/reservations/upcoming/reschedule", map[string]any{
			"reservation_date": target,
			"reservation_time": "14:30",
			"reason":           "family plans",
		})
		require.Equal(t, http.StatusOK, status, body)

		var updated model.Reservation
		require.NoError(t, testDB.First(&updated, "id = ?", "upcoming").Error)
		assert.Equal(t, target, updated.ReservationDate)
		assert.Equal(t, "14:30:00", updated.ReservationTime)
		require.NotNil(t, updated.ModificationReason)
		assert.Equal(t, "family plans", *updated.ModificationReason)

		assert.Eventually(t, func() bool { return emails.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	})
}
