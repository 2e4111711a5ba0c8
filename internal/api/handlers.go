package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/go-chi/chi/v5"
)

// sourceRequest names a source either as "type:id" or field by field.
type sourceRequest struct {
	Source        string            `json:"source"`
	SourceType    domain.SourceType `json:"source_type"`
	SourceID      string            `json:"source_id"`
	ProjectID     string            `json:"project_id"`
	ParentStoryID string            `json:"parent_story_id"`
	Title         string            `json:"title"`
}

func (b sourceRequest) ref() (domain.SourceRef, error) {
	ref := domain.SourceRef{Type: b.SourceType, SourceID: b.SourceID}
	if b.Source != "" {
		var err error
		if ref, err = domain.ParseSourceKey(b.Source); err != nil {
			return ref, err
		}
	}
	if !domain.ValidSourceTypes[ref.Type] || ref.SourceID == "" {
		return ref, fmt.Errorf("a valid source is required")
	}
	ref.ProjectID = b.ProjectID
	ref.ParentStoryID = b.ParentStoryID
	return ref, nil
}

type successorRequest struct {
	Content        string `json:"content"`
	NextActionDate string `json:"next_action_date"`
}

type stopRequest struct {
	Start            *time.Time        `json:"start"`
	End              *time.Time        `json:"end"`
	Description      string            `json:"description"`
	CompleteFollowUp bool              `json:"complete_follow_up"`
	ResultNote       string            `json:"result_note"`
	Successor        *successorRequest `json:"successor"`
}

func (b stopRequest) toStopRequest() (reconcile.StopRequest, error) {
	req := reconcile.StopRequest{
		Start:            b.Start,
		End:              b.End,
		Description:      strings.TrimSpace(b.Description),
		CompleteFollowUp: b.CompleteFollowUp,
		ResultNote:       strings.TrimSpace(b.ResultNote),
	}
	if b.Successor != nil {
		next, err := time.ParseInLocation(domain.WorkDateLayout, b.Successor.NextActionDate, time.Local)
		if err != nil {
			return req, fmt.Errorf("successor next_action_date must be YYYY-MM-DD")
		}
		req.Successor = &reconcile.SuccessorRequest{Content: b.Successor.Content, NextActionDate: next}
	}
	return req, nil
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStatusView(s.timer.Status(r.Context())))
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body sourceRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	ref, err := body.ref()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_source", err.Error())
		return
	}
	res, err := s.timer.Start(r.Context(), ref, body.Title)
	if err != nil && !res.Applied {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandView(res))
}

func (s *server) handleInterrupt(w http.ResponseWriter, r *http.Request) {
	var body sourceRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	ref, err := body.ref()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_source", err.Error())
		return
	}
	res, err := s.timer.Interrupt(r.Context(), ref, body.Title)
	if err != nil && !res.Applied {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandView(res))
}

func (s *server) handlePause(w http.ResponseWriter, r *http.Request) {
	res, err := s.timer.Pause(r.Context())
	if err != nil && !res.Applied {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandView(res))
}

func (s *server) handleResume(w http.ResponseWriter, r *http.Request) {
	res, err := s.timer.Resume(r.Context())
	if err != nil && !res.Applied {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandView(res))
}

func (s *server) handleStopPreview(w http.ResponseWriter, r *http.Request) {
	p, err := s.timer.PrepareStop(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusConflict, "idle", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, toPreviewView(p))
}

func (s *server) handleStop(w http.ResponseWriter, r *http.Request) {
	var body stopRequest
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	req, err := body.toStopRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	res, err := s.timer.Stop(r.Context(), req)
	if err != nil && (res == nil || !res.Applied) {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStopView(res))
}

func (s *server) handleStack(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStackView(s.timer.Status(r.Context()).Suspended))
}

func (s *server) handleStackResume(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "stack id must be a number")
		return
	}
	res, err := s.timer.ResumeFromStack(r.Context(), id)
	if err != nil && !res.Applied {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommandView(res))
}

func (s *server) handleSources(w http.ResponseWriter, r *http.Request) {
	if s.sources == nil {
		writeError(w, http.StatusServiceUnavailable, "no_catalog", "source catalog is not configured")
		return
	}
	sources, err := s.sources.List(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]sourceView, 0, len(sources))
	for _, src := range sources {
		out = append(out, toSourceView(src))
	}
	writeJSON(w, http.StatusOK, out)
}
