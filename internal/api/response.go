package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/alexanderramin/efficiency/internal/ledger"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/service"
)

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, detail string) {
	writeJSON(w, code, errorBody{Error: kind, Detail: detail})
}

// writeServiceError maps a service error to a status code and error kind.
func writeServiceError(w http.ResponseWriter, err error) {
	var code int
	var kind string
	switch {
	case errors.Is(err, service.ErrProjectUnknown):
		code, kind = http.StatusUnprocessableEntity, "project_unknown"
	case errors.Is(err, service.ErrSourceNotFound):
		code, kind = http.StatusNotFound, "source_not_found"
	case errors.Is(err, reconcile.ErrEmptyWindow):
		code, kind = http.StatusUnprocessableEntity, "empty_window"
	case errors.Is(err, reconcile.ErrNotFollowUp):
		code, kind = http.StatusUnprocessableEntity, "not_follow_up"
	case errors.Is(err, ledger.ErrTimeout):
		code, kind = http.StatusGatewayTimeout, "ledger_timeout"
	case errors.Is(err, ledger.ErrUnavailable):
		code, kind = http.StatusBadGateway, "ledger_unavailable"
	case errors.Is(err, ledger.ErrRejected):
		code, kind = http.StatusBadGateway, "ledger_rejected"
	default:
		code, kind = http.StatusInternalServerError, "internal"
	}
	writeError(w, code, kind, err.Error())
}

// decodeBody decodes an optional JSON body. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
