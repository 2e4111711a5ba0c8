package ledger

import (
	"context"
	"net/http"
	"net/url"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// ListTaskSources returns the trackable sources, optionally narrowed to one
// project. Entries with an unknown source type are dropped.
func (c *Client) ListTaskSources(ctx context.Context, projectID string) ([]domain.TaskSource, error) {
	var q url.Values
	if projectID != "" {
		q = url.Values{"project_id": {projectID}}
	}
	var out listEnvelope[taskSourceDTO]
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/task-sources",
		query:   q,
		retries: c.cfg.MaxRetries,
	}, &out)
	if err != nil {
		return nil, err
	}
	sources := make([]domain.TaskSource, 0, len(out.items))
	for _, d := range out.items {
		s := d.toDomain()
		if !domain.ValidSourceTypes[s.Type] {
			continue
		}
		sources = append(sources, s)
	}
	return sources, nil
}
