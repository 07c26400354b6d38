package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/", "anon-key", opts...)
	require.NoError(t, err)
	return c
}

func TestClient_Select(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/reservations", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.r-1", r.URL.Query().Get("restaurant_id"))
		assert.Equal(t, "in.(confirmed,pending)", r.URL.Query().Get("status"))

		json.NewEncoder(w).Encode([]row{{ID: "a", Status: "confirmed"}})
	})

	var rows []row
	q := c.From("reservations").Select("*", "", false).
		Eq("restaurant_id", "r-1").
		In("status", []string{"confirmed", "pending"})
	_, err := c.Exec(context.Background(), q, &rows)
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: "a", Status: "confirmed"}}, rows)
}

func TestClient_ErrorResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"42703","message":"column reservations.foo does not exist"}`))
	})

	var rows []row
	_, err := c.Exec(context.Background(), c.From("reservations").Select("*", "", false).Eq("foo", "1"), &rows)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "42703", apiErr.Code)
	assert.Contains(t, apiErr.Message, "does not exist")
}

func TestClient_UpdateUpsertDelete(t *testing.T) {
	var gotMethods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method)
		switch r.Method {
		case http.MethodPatch:
			assert.Equal(t, "eq.res-1", r.URL.Query().Get("id"))
			assert.Contains(t, r.Header.Get("Prefer"), "return=representation")
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "confirmed", body["status"])
			w.Write([]byte(`[{"id":"res-1","status":"confirmed"}]`))
		case http.MethodPost:
			assert.Equal(t, "endpoint", r.URL.Query().Get("on_conflict"))
			assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			assert.Equal(t, "eq.https://push.example/1", r.URL.Query().Get("endpoint"))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	ctx := context.Background()
	var updated []row
	_, err := c.Exec(ctx, c.From("reservations").Update(map[string]string{"status": "confirmed"}, "representation", "").Eq("id", "res-1"), &updated)
	require.NoError(t, err)
	assert.Len(t, updated, 1)

	_, err = c.Exec(ctx, c.From("push_subscriptions").Upsert([]map[string]string{{"endpoint": "https://push.example/1"}}, "endpoint", "minimal", ""), nil)
	require.NoError(t, err)
	_, err = c.Exec(ctx, c.From("push_subscriptions").Delete("minimal", "").Eq("endpoint", "https://push.example/1"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPatch, http.MethodPost, http.MethodDelete}, gotMethods)
}

// pagedServer serves total rows but never more than maxRows per answer,
// like a project with a low max-rows setting.
func pagedServer(t *testing.T, total, maxRows int, offsets *[]int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Prefer"), "count=exact")
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("order"), "id.asc"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		*offsets = append(*offsets, offset)
		limit = min(limit, maxRows)

		var page []row
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, row{ID: fmt.Sprintf("%02d", i)})
		}
		if len(page) > 0 {
			w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, offset+len(page)-1, total))
		} else {
			w.Header().Set("Content-Range", fmt.Sprintf("*/%d", total))
		}
		json.NewEncoder(w).Encode(page)
	}
}

func TestSelectAll_Pages(t *testing.T) {
	var offsets []int
	c := newTestClient(t, pagedServer(t, 5, 100, &offsets), WithPageSize(2))

	rows, err := SelectAll[row](context.Background(), c, "reservations", "id", nil)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, "04", rows[4].ID)
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestSelectAll_ServerCapsRows(t *testing.T) {
	var offsets []int
	c := newTestClient(t, pagedServer(t, 7, 3, &offsets), WithPageSize(1000))

	rows, err := SelectAll[row](context.Background(), c, "reservations", "id", nil)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	for i, r := range rows {
		assert.Equal(t, fmt.Sprintf("%02d", i), r.ID)
	}
	assert.Equal(t, []int{0, 3, 6}, offsets)
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New("", "key")
	assert.Error(t, err)
	_, err = New("https://example.supabase.co", "")
	assert.Error(t, err)
}
