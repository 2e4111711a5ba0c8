package domain

import (
	"fmt"
	"strings"
	"time"
)

type SourceType string

const (
	SourceStory           SourceType = "story"
	SourceProgramStory    SourceType = "program_story"
	SourceStoryFollowUp   SourceType = "story_follow_up"
	SourceProgramFollowUp SourceType = "program_follow_up"
)

// ValidSourceTypes is the canonical set of accepted source type strings.
var ValidSourceTypes = map[SourceType]bool{
	SourceStory:           true,
	SourceProgramStory:    true,
	SourceStoryFollowUp:   true,
	SourceProgramFollowUp: true,
}

// IsFollowUp reports whether the source is a follow-up record rather than a story.
func (t SourceType) IsFollowUp() bool {
	return t == SourceStoryFollowUp || t == SourceProgramFollowUp
}

// SourceRef identifies what tracked time is billed to.
type SourceRef struct {
	Type          SourceType `json:"source_type"`
	SourceID      string     `json:"source_id"`
	ProjectID     string     `json:"project_id"`
	ParentStoryID string     `json:"parent_story_id,omitempty"`
}

func (r SourceRef) Validate() error {
	if !ValidSourceTypes[r.Type] {
		return fmt.Errorf("invalid source type %q", r.Type)
	}
	if r.SourceID == "" {
		return fmt.Errorf("source id is required")
	}
	if r.Type.IsFollowUp() && r.ParentStoryID == "" && r.ProjectID == "" {
		return fmt.Errorf("follow-up source %s needs a parent story or project", r.SourceID)
	}
	return nil
}

// Key returns the compact "type:id" form used on the command line.
func (r SourceRef) Key() string {
	return string(r.Type) + ":" + r.SourceID
}

// FallbackTitle is the display label used when the catalog cannot be reached.
func (r SourceRef) FallbackTitle() string {
	return fmt.Sprintf("%s #%s", strings.ReplaceAll(string(r.Type), "_", " "), r.SourceID)
}

// ParseSourceKey parses "type:id" into a partial SourceRef.
func ParseSourceKey(s string) (SourceRef, error) {
	typ, id, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || id == "" {
		return SourceRef{}, fmt.Errorf("source must look like type:id, got %q", s)
	}
	ref := SourceRef{Type: SourceType(typ), SourceID: id}
	if !ValidSourceTypes[ref.Type] {
		return SourceRef{}, fmt.Errorf("invalid source type %q", typ)
	}
	return ref, nil
}

// TaskSource is one addressable unit of work from the external catalog.
type TaskSource struct {
	Type           SourceType
	SourceID       string
	ProjectID      string
	Title          string
	ParentStoryID  string
	NextActionDate *time.Time
}

func (s TaskSource) Ref() SourceRef {
	return SourceRef{
		Type:          s.Type,
		SourceID:      s.SourceID,
		ProjectID:     s.ProjectID,
		ParentStoryID: s.ParentStoryID,
	}
}
