package ledger

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// StoryFollowUps manages follow-up records under /stories/{id}.
type StoryFollowUps struct {
	c *Client
}

// ProgramFollowUps manages follow-up records under /program-stories/{id}.
type ProgramFollowUps struct {
	c *Client
}

func (c *Client) StoryFollowUps() StoryFollowUps     { return StoryFollowUps{c: c} }
func (c *Client) ProgramFollowUps() ProgramFollowUps { return ProgramFollowUps{c: c} }

func (g StoryFollowUps) ListRecords(ctx context.Context, storyID string) ([]domain.FollowUpRecord, error) {
	return g.c.listFollowUps(ctx, storyPath("/stories", storyID))
}

func (g StoryFollowUps) Complete(ctx context.Context, storyID string, done domain.FollowUpCompletion) error {
	return g.c.completeFollowUp(ctx, storyPath("/stories", storyID), done)
}

func (g StoryFollowUps) CreateSuccessor(ctx context.Context, storyID string, next domain.FollowUpSuccessor) error {
	return g.c.do(ctx, request{
		method: http.MethodPost,
		path:   storyPath("/stories", storyID),
		body: storySuccessorBody{
			Content:    next.Content,
			ActionDate: next.NextActionDate.Format(domain.WorkDateLayout),
			EventDate:  next.EventDate.Format(domain.WorkDateLayout),
		},
	}, nil)
}

func (g ProgramFollowUps) ListRecords(ctx context.Context, storyID string) ([]domain.FollowUpRecord, error) {
	return g.c.listFollowUps(ctx, storyPath("/program-stories", storyID))
}

func (g ProgramFollowUps) Complete(ctx context.Context, storyID string, done domain.FollowUpCompletion) error {
	return g.c.completeFollowUp(ctx, storyPath("/program-stories", storyID), done)
}

func (g ProgramFollowUps) CreateSuccessor(ctx context.Context, storyID string, next domain.FollowUpSuccessor) error {
	return g.c.do(ctx, request{
		method: http.MethodPost,
		path:   storyPath("/program-stories", storyID),
		body: programSuccessorBody{
			Content:          next.Content,
			NextFollowUpDate: next.NextActionDate.Format(domain.WorkDateLayout),
			EventDate:        next.EventDate.Format(domain.WorkDateLayout),
		},
	}, nil)
}

func storyPath(prefix, storyID string) string {
	return prefix + "/" + url.PathEscape(storyID) + "/follow-up-records"
}

func (c *Client) listFollowUps(ctx context.Context, path string) ([]domain.FollowUpRecord, error) {
	var out listEnvelope[followUpRecordDTO]
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    path,
		retries: c.cfg.MaxRetries,
	}, &out)
	if err != nil {
		return nil, err
	}
	records := make([]domain.FollowUpRecord, 0, len(out.items))
	for _, d := range out.items {
		records = append(records, d.toDomain())
	}
	return records, nil
}

func (c *Client) completeFollowUp(ctx context.Context, path string, done domain.FollowUpCompletion) error {
	return c.do(ctx, request{
		method: http.MethodPut,
		path:   path + "/" + url.PathEscape(done.RecordID),
		body: completionBody{
			Result:      done.ResultNote,
			CompletedAt: done.CompletedAt.Format(time.RFC3339),
		},
	}, nil)
}
