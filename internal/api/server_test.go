package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/ledger"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/repository"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/alexanderramin/efficiency/internal/testutil"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	srv       *httptest.Server
	clock     *testutil.FakeClock
	ledger    *testutil.FakeLedger
	followUps *testutil.FakeFollowUps
}

func newAPIFixture(t *testing.T, opts Options) *apiFixture {
	t.Helper()
	f := &apiFixture{
		clock:     testutil.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)),
		ledger:    testutil.NewFakeLedger(),
		followUps: testutil.NewFakeFollowUps(),
	}
	f.ledger.Sources = []domain.TaskSource{
		{Type: domain.SourceStory, SourceID: "101", ProjectID: "7", Title: "Login page"},
		{Type: domain.SourceStoryFollowUp, SourceID: "5", ProjectID: "7", Title: "Call vendor", ParentStoryID: "12"},
	}
	f.followUps.Records["12"] = []domain.FollowUpRecord{{ID: "5", Content: "Call vendor", CreatedAt: f.clock.Now().Add(-48 * time.Hour)}}

	sources := service.NewSourceService(f.ledger)
	journal := repository.NewSQLiteJournalRepo(testutil.NewTestDB(t))
	coord := reconcile.NewCoordinator(f.ledger,
		reconcile.Gateways{domain.SourceStoryFollowUp: f.followUps}, sources, journal)
	timerSvc := service.NewTimerService(context.Background(), f.clock, timer.NewMemoryStore(), coord, sources)

	f.srv = httptest.NewServer(NewRouter(timerSvc, sources, opts))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	dec := json.NewDecoder(resp.Body)
	var raw json.RawMessage
	require.NoError(t, dec.Decode(&raw))
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else {
		out = map[string]any{"items": decodeArray(t, raw)}
	}
	return resp, out
}

func decodeArray(t *testing.T, raw json.RawMessage) []any {
	t.Helper()
	var items []any
	require.NoError(t, json.Unmarshal(raw, &items))
	return items
}

func TestAPI_StatusIdle(t *testing.T) {
	f := newAPIFixture(t, Options{})
	resp, body := f.do(t, http.MethodGet, "/v1/timer", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "idle", body["state"])
	assert.Nil(t, body["session"])
}

func TestAPI_StartPauseResume(t *testing.T) {
	f := newAPIFixture(t, Options{})

	resp, body := f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story:101"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["applied"])
	status := body["status"].(map[string]any)
	session := status["session"].(map[string]any)
	assert.Equal(t, "Login page", session["title"])

	f.clock.Advance(90 * time.Second)
	_, body = f.do(t, http.MethodPost, "/v1/timer/pause", nil)
	assert.Equal(t, true, body["applied"])

	f.clock.Advance(time.Hour)
	_, body = f.do(t, http.MethodGet, "/v1/timer", nil)
	assert.Equal(t, "paused", body["state"])
	assert.Equal(t, float64(90), body["session"].(map[string]any)["elapsed_seconds"])

	_, body = f.do(t, http.MethodPost, "/v1/timer/pause", nil)
	assert.Equal(t, false, body["applied"], "pause while paused is a no-op")

	_, body = f.do(t, http.MethodPost, "/v1/timer/resume", nil)
	assert.Equal(t, true, body["applied"])
}

func TestAPI_StartRejectsBadSource(t *testing.T) {
	f := newAPIFixture(t, Options{})
	resp, body := f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "epic:1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_source", body["error"])

	resp, body = f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source_type": "story"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_source", body["error"])
}

func TestAPI_UnknownProjectIsUnprocessable(t *testing.T) {
	f := newAPIFixture(t, Options{})
	f.ledger.SourceErr = ledger.ErrUnavailable

	resp, body := f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story:101"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "project_unknown", body["error"])
	assert.NotEmpty(t, body["detail"])
}

func TestAPI_InterruptAndResumeFromStack(t *testing.T) {
	f := newAPIFixture(t, Options{})
	f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story:101"})
	f.clock.Advance(40 * time.Second)

	_, body := f.do(t, http.MethodPost, "/v1/timer/interrupt", map[string]any{"source": "story_follow_up:5"})
	assert.Equal(t, true, body["applied"])

	_, body = f.do(t, http.MethodGet, "/v1/stack", nil)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	entry := items[0].(map[string]any)
	assert.Equal(t, float64(40), entry["snapshot_seconds"])

	resp, body := f.do(t, http.MethodPost, "/v1/stack/99/resume", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["applied"])

	resp, body = f.do(t, http.MethodPost, "/v1/stack/abc/resume", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_id", body["error"])

	_, body = f.do(t, http.MethodPost, "/v1/stack/1/resume", nil)
	assert.Equal(t, true, body["applied"])
	session := body["status"].(map[string]any)["session"].(map[string]any)
	assert.Equal(t, float64(40), session["elapsed_seconds"])
}

func TestAPI_StopPreviewAndStop(t *testing.T) {
	f := newAPIFixture(t, Options{})

	resp, body := f.do(t, http.MethodGet, "/v1/timer/stop-preview", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "idle", body["error"])

	f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story_follow_up:5"})
	f.clock.Advance(30 * time.Minute)

	_, body = f.do(t, http.MethodGet, "/v1/timer/stop-preview", nil)
	assert.Equal(t, 0.5, body["hours_spent"])

	resp, body = f.do(t, http.MethodPost, "/v1/timer/stop", map[string]any{
		"complete_follow_up": true,
		"result_note":        "agreed on price",
		"successor":          map[string]any{"content": "Send contract", "next_action_date": "2025-03-17"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["outcome"])
	assert.NotEmpty(t, body["work_log_id"])
	assert.Equal(t, true, body["completion"].(map[string]any)["attempted"])
	require.Len(t, f.followUps.Completed, 1)
	assert.Equal(t, "agreed on price", f.followUps.Completed[0].ResultNote)
	require.Len(t, f.followUps.Successors, 1)

	_, body = f.do(t, http.MethodGet, "/v1/timer", nil)
	assert.Equal(t, "idle", body["state"])
}

func TestAPI_StopEmptyWindowKeepsSession(t *testing.T) {
	f := newAPIFixture(t, Options{})
	f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story:101"})
	f.clock.Advance(10 * time.Minute)

	at := f.clock.Now()
	resp, body := f.do(t, http.MethodPost, "/v1/timer/stop", map[string]any{"start": at, "end": at})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "empty_window", body["error"])

	_, body = f.do(t, http.MethodGet, "/v1/timer", nil)
	assert.Equal(t, "running", body["state"])
}

func TestAPI_StopLedgerFailureReportsJournal(t *testing.T) {
	f := newAPIFixture(t, Options{})
	f.ledger.CreateErr = ledger.ErrUnavailable
	f.do(t, http.MethodPost, "/v1/timer/start", map[string]any{"source": "story:101"})
	f.clock.Advance(10 * time.Minute)

	resp, body := f.do(t, http.MethodPost, "/v1/timer/stop", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "failed", body["outcome"])
	assert.NotEmpty(t, body["journal_id"])
	assert.NotEmpty(t, body["ledger_error"])
}

func TestAPI_StopRejectsUnknownFields(t *testing.T) {
	f := newAPIFixture(t, Options{})
	resp, body := f.do(t, http.MethodPost, "/v1/timer/stop", map[string]any{"hours": 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_body", body["error"])
}

func TestAPI_Sources(t *testing.T) {
	f := newAPIFixture(t, Options{})
	_, body := f.do(t, http.MethodGet, "/v1/sources?project_id=7", nil)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "story", items[0].(map[string]any)["source_type"])

	f.ledger.SourceErr = ledger.ErrUnavailable
	resp, body := f.do(t, http.MethodGet, "/v1/sources", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "ledger_unavailable", body["error"])
}

func TestAPI_NotFoundAndMethodNotAllowed(t *testing.T) {
	f := newAPIFixture(t, Options{})
	resp, body := f.do(t, http.MethodGet, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])

	resp, body = f.do(t, http.MethodDelete, "/v1/timer", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method_not_allowed", body["error"])
}

func TestAPI_RateLimit(t *testing.T) {
	f := newAPIFixture(t, Options{RateLimit: 2})
	for i := 0; i < 2; i++ {
		resp, _ := f.do(t, http.MethodGet, "/v1/timer", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := f.do(t, http.MethodGet, "/v1/timer", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", body["error"])
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
}
