package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/api/"
	cfg.Token = "secret"
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg, NoopObserver{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sampleDraft() domain.WorkLogDraft {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return domain.WorkLogDraft{
		ProjectID:   "7",
		SourceType:  domain.SourceStory,
		SourceID:    "101",
		Description: "pairing",
		HoursSpent:  0.5,
		WorkDate:    "2025-03-10",
		StartedAt:   start,
		EndedAt:     start.Add(30 * time.Minute),
	}
}

func TestClient_CreateWorkLog_WireShape(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/work-logs", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{
			"project_id":  "7",
			"source_type": "story",
			"source_id":   "101",
			"description": "pairing",
			"hours_spent": 0.5,
			"work_date":   "2025-03-10",
			"started_at":  "2025-03-10T09:00:00Z",
			"ended_at":    "2025-03-10T09:30:00Z",
		}, body)

		writeJSON(w, http.StatusCreated, map[string]any{"id": 88})
	})

	rec, err := c.CreateWorkLog(context.Background(), sampleDraft(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, "88", rec.ID, "numeric ids decode as strings")
	assert.Equal(t, 0.5, rec.HoursSpent)
}

func TestClient_CreateWorkLog_GeneratesIdempotencyKey(t *testing.T) {
	var seen string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Idempotency-Key")
		writeJSON(w, http.StatusCreated, map[string]any{"id": "a"})
	})
	c.newKey = func() string { return "generated" }

	_, err := c.CreateWorkLog(context.Background(), sampleDraft(), "")
	require.NoError(t, err)
	assert.Equal(t, "generated", seen)
}

func TestClient_MutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	c.cfg.MaxRetries = 3

	_, err := c.CreateWorkLog(context.Background(), sampleDraft(), "k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ListTaskSources_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/task-sources", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("project_id"))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{
			{"source_type": "story", "source_id": 101, "project_id": 7, "title": "Login page"},
			{"source_type": "story_follow_up", "source_id": "55", "project_id": "7", "title": "Call vendor",
				"parent_story_id": 12, "next_action_date": "2025-03-14"},
			{"source_type": "epic", "source_id": "1", "project_id": "7", "title": "ignored"},
		})
	})
	c.cfg.MaxRetries = 1

	sources, err := c.ListTaskSources(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, sources, 2)
	assert.Equal(t, domain.SourceRef{Type: domain.SourceStory, SourceID: "101", ProjectID: "7"}, sources[0].Ref())
	assert.Equal(t, "12", sources[1].ParentStoryID)
	require.NotNil(t, sources[1].NextActionDate)
	assert.Equal(t, 14, sources[1].NextActionDate.Day())
}

func TestClient_ListTaskSources_PaginatedEnvelope(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   1,
			"results": []map[string]any{{"source_type": "program_story", "source_id": "9", "project_id": "2", "title": "X"}},
		})
	})

	sources, err := c.ListTaskSources(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, domain.SourceProgramStory, sources[0].Type)
}

func TestClient_RejectionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"bad project"}`, http.StatusUnprocessableEntity)
	})
	c.cfg.MaxRetries = 2

	_, err := c.ListTaskSources(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRejected)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Body, "bad project")
}

func TestClient_Timeout(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	c.cfg.Timeout = 50 * time.Millisecond

	_, err := c.CreateWorkLog(context.Background(), sampleDraft(), "k")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Unavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1" // nothing listening
	cfg.MaxRetries = 0
	c := NewClient(cfg, NoopObserver{})

	_, err := c.ListTaskSources(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_WorkLogQueries(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2025-03-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-03-31", r.URL.Query().Get("end_date"))
		switch r.URL.Path {
		case "/api/work-logs":
			writeJSON(w, http.StatusOK, []map[string]any{{
				"id": 1, "project_id": 7, "source_type": "story", "source_id": 101,
				"hours_spent": 1.25, "work_date": "2025-03-10",
				"started_at": "2025-03-10T09:00:00Z", "ended_at": "2025-03-10T10:15:00Z",
			}})
		case "/api/work-logs/summary":
			writeJSON(w, http.StatusOK, map[string]any{
				"total_hours": 3.5,
				"by_project":  []map[string]any{{"project_id": 7, "hours": 3.5}},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	logs, err := c.ListWorkLogs(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "1", logs[0].ID)
	assert.Equal(t, 1.25, logs[0].HoursSpent)
	assert.Equal(t, 75*time.Minute, logs[0].EndedAt.Sub(logs[0].StartedAt))

	sum, err := c.Summary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 3.5, sum.TotalHours)
	assert.Equal(t, []domain.ProjectHours{{ProjectID: "7", Hours: 3.5}}, sum.ByProject)
}

func TestClient_UpdateAndDeleteWorkLog(t *testing.T) {
	var methods []string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	rec, err := c.UpdateWorkLog(context.Background(), "42", sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "42", rec.ID)
	require.NoError(t, c.DeleteWorkLog(context.Background(), "42"))
	assert.Equal(t, []string{"PUT /api/work-logs/42", "DELETE /api/work-logs/42"}, methods)
}

func TestClient_LogObserverRecordsCalls(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	var buf bytes.Buffer
	c.observer = NewLogObserver(&buf)

	_, err := c.ListTaskSources(context.Background(), "")
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "msg=ledger_call")
	assert.Contains(t, out, "path=/task-sources")
	assert.Contains(t, out, "status=200")
}
