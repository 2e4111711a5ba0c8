package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

type sourceService struct {
	catalog  SourceCatalog
	observer UseCaseObserver
}

func NewSourceService(catalog SourceCatalog, observers ...UseCaseObserver) SourceService {
	return &sourceService{
		catalog:  catalog,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *sourceService) List(ctx context.Context, projectID string) (sources []domain.TaskSource, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "list-sources",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"project_id": projectID, "count": len(sources)},
		})
	}()

	sources, err = s.catalog.ListTaskSources(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing task sources: %w", err)
	}
	return sources, nil
}

// Resolve finds ref in the catalog and fills in what ref lacks. Fields set
// on ref win over the catalog's.
func (s *sourceService) Resolve(ctx context.Context, ref domain.SourceRef) (domain.TaskSource, error) {
	sources, err := s.catalog.ListTaskSources(ctx, ref.ProjectID)
	if err != nil {
		return domain.TaskSource{}, fmt.Errorf("resolving %s: %w", ref.Key(), err)
	}
	for _, src := range sources {
		if src.Type != ref.Type || src.SourceID != ref.SourceID {
			continue
		}
		if ref.ProjectID != "" {
			src.ProjectID = ref.ProjectID
		}
		if ref.ParentStoryID != "" {
			src.ParentStoryID = ref.ParentStoryID
		}
		return src, nil
	}
	return domain.TaskSource{}, fmt.Errorf("%w: %s", ErrSourceNotFound, ref.Key())
}
