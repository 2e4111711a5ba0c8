package ledger

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// CreateWorkLog submits a draft. The idempotency key lets the ledger drop a
// duplicate of an earlier submission; an empty key gets a fresh one. Never
// retried.
func (c *Client) CreateWorkLog(ctx context.Context, draft domain.WorkLogDraft, idempotencyKey string) (domain.WorkLogRecord, error) {
	if idempotencyKey == "" {
		idempotencyKey = c.newKey()
	}
	var out workLogDTO
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/work-logs",
		body:    newWorkLogBody(draft),
		headers: map[string]string{"Idempotency-Key": idempotencyKey},
	}, &out)
	if err != nil {
		return domain.WorkLogRecord{}, err
	}
	rec := out.toDomain()
	if rec.ProjectID == "" {
		// Some deployments answer with just the id.
		rec.WorkLogDraft = draft
	}
	return rec, nil
}

func (c *Client) UpdateWorkLog(ctx context.Context, id string, draft domain.WorkLogDraft) (domain.WorkLogRecord, error) {
	var out workLogDTO
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/work-logs/" + url.PathEscape(id),
		body:   newWorkLogBody(draft),
	}, &out)
	if err != nil {
		return domain.WorkLogRecord{}, err
	}
	rec := out.toDomain()
	if rec.ID == "" {
		rec = domain.WorkLogRecord{ID: id, WorkLogDraft: draft}
	}
	return rec, nil
}

func (c *Client) DeleteWorkLog(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/work-logs/" + url.PathEscape(id),
	}, nil)
}

// ListWorkLogs returns entries whose work date falls in [from, to].
func (c *Client) ListWorkLogs(ctx context.Context, from, to time.Time) ([]domain.WorkLogRecord, error) {
	var out listEnvelope[workLogDTO]
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/work-logs",
		query:   dateRange(from, to),
		retries: c.cfg.MaxRetries,
	}, &out)
	if err != nil {
		return nil, err
	}
	records := make([]domain.WorkLogRecord, 0, len(out.items))
	for _, d := range out.items {
		records = append(records, d.toDomain())
	}
	return records, nil
}

func (c *Client) Summary(ctx context.Context, from, to time.Time) (domain.WorkLogSummary, error) {
	var out summaryDTO
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/work-logs/summary",
		query:   dateRange(from, to),
		retries: c.cfg.MaxRetries,
	}, &out)
	if err != nil {
		return domain.WorkLogSummary{}, err
	}
	sum := domain.WorkLogSummary{TotalHours: out.TotalHours}
	for _, p := range out.ByProject {
		sum.ByProject = append(sum.ByProject, domain.ProjectHours{ProjectID: string(p.ProjectID), Hours: p.Hours})
	}
	return sum, nil
}

func dateRange(from, to time.Time) url.Values {
	return url.Values{
		"start_date": {from.Format(domain.WorkDateLayout)},
		"end_date":   {to.Format(domain.WorkDateLayout)},
	}
}
