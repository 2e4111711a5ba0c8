package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/timer"
)

// timerService is the single entry point to the engine within a process.
// The mutex also covers the reconciliation calls made during Stop.
type timerService struct {
	mu       sync.Mutex
	engine   *timer.Engine
	coord    *reconcile.Coordinator
	sources  SourceService
	observer UseCaseObserver
	restored timer.RestoreReport
}

// NewTimerService restores the engine from store and wraps it. sources may
// be nil, in which case titles always fall back to the source key.
func NewTimerService(
	ctx context.Context,
	clock timer.Clock,
	store timer.StateStore,
	coord *reconcile.Coordinator,
	sources SourceService,
	observers ...UseCaseObserver,
) TimerService {
	startedAt := time.Now().UTC()
	engine, report := timer.Restore(ctx, clock, store)
	s := &timerService{
		engine:   engine,
		coord:    coord,
		sources:  sources,
		observer: useCaseObserverOrNoop(observers),
		restored: report,
	}

	restoreErr := errors.Join(report.ActiveErr, report.StackErr, report.RepairErr)
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      "restore",
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   restoreErr == nil,
		Err:       restoreErr,
		Fields: map[string]any{
			"state":     string(engine.State()),
			"suspended": len(engine.Suspended()),
			"collapsed": report.Collapsed,
		},
	})
	return s
}

func (s *timerService) RestoreReport() timer.RestoreReport {
	return s.restored
}

func (s *timerService) Status(context.Context) timer.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

func (s *timerService) Start(ctx context.Context, ref domain.SourceRef, title string) (CommandResult, error) {
	return s.command(ctx, "start", func(fields map[string]any) (bool, error) {
		if s.engine.State() != domain.StateIdle {
			return false, nil
		}
		ref, title, err := s.resolve(ctx, ref, title, fields)
		if err != nil {
			return false, err
		}
		return s.engine.Start(ctx, ref, title)
	})
}

func (s *timerService) Pause(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "pause", func(map[string]any) (bool, error) {
		return s.engine.Pause(ctx)
	})
}

func (s *timerService) Resume(ctx context.Context) (CommandResult, error) {
	return s.command(ctx, "resume", func(map[string]any) (bool, error) {
		return s.engine.Resume(ctx)
	})
}

func (s *timerService) Interrupt(ctx context.Context, ref domain.SourceRef, title string) (CommandResult, error) {
	return s.command(ctx, "interrupt", func(fields map[string]any) (bool, error) {
		if s.engine.State() == domain.StateIdle {
			return false, nil
		}
		ref, title, err := s.resolve(ctx, ref, title, fields)
		if err != nil {
			return false, err
		}
		return s.engine.Interrupt(ctx, ref, title)
	})
}

func (s *timerService) ResumeFromStack(ctx context.Context, id int64) (CommandResult, error) {
	return s.command(ctx, "resume-from-stack", func(fields map[string]any) (bool, error) {
		fields["entry_id"] = id
		return s.engine.ResumeFromStack(ctx, id)
	})
}

func (s *timerService) PrepareStop(context.Context) (*StopPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped, ok := s.previewStop()
	if !ok {
		return nil, nil
	}
	window := reconcile.DefaultWindow(stopped)
	hours, err := window.Hours()
	if err != nil && !errors.Is(err, reconcile.ErrEmptyWindow) {
		return nil, err
	}
	return &StopPreview{
		Session:        stopped.Session,
		ElapsedSeconds: stopped.ElapsedSeconds,
		Window:         window,
		HoursSpent:     hours,
	}, nil
}

// Stop validates req against the session before committing, so a request
// that cannot be billed leaves the session active. Once committed, the
// session is released whatever the ledger says.
func (s *timerService) Stop(ctx context.Context, req reconcile.StopRequest) (result *StopResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "stop",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	preview, ok := s.previewStop()
	if !ok {
		fields["applied"] = false
		return &StopResult{}, nil
	}
	fields["source"] = preview.Session.Source.Key()
	if _, err = s.coord.Prepare(preview, req); err != nil {
		return nil, fmt.Errorf("validating stop: %w", err)
	}

	result = &StopResult{}
	result.Applied, err = s.engine.Stop(ctx, func(ctx context.Context, stopped timer.StoppedSession) {
		result.Stopped = stopped
		plan, perr := s.coord.Prepare(stopped, req)
		if perr != nil {
			result.Report = &reconcile.Report{LedgerErr: perr}
			return
		}
		report := s.coord.Execute(ctx, plan)
		result.Report = &report
	})
	fields["applied"] = result.Applied
	if result.Report != nil {
		fields["outcome"] = string(result.Report.Outcome())
		fields["hours_spent"] = result.Report.Draft.HoursSpent
	}
	return result, err
}

func (s *timerService) previewStop() (timer.StoppedSession, bool) {
	snap := s.engine.Snapshot()
	if snap.Session == nil {
		return timer.StoppedSession{}, false
	}
	return timer.StoppedSession{
		Session:        *snap.Session,
		ElapsedSeconds: snap.ElapsedSeconds,
		StoppedAt:      snap.At,
	}, true
}

func (s *timerService) command(ctx context.Context, name string, fn func(fields map[string]any) (bool, error)) (res CommandResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["applied"] = res.Applied
		fields["state"] = string(res.Status.State)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      name,
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	res.Applied, err = fn(fields)
	res.Status = s.engine.Snapshot()
	return res, err
}

// resolve completes ref and title from the catalog. An unreachable catalog
// falls back to the key title; a missing project is an error.
func (s *timerService) resolve(ctx context.Context, ref domain.SourceRef, title string, fields map[string]any) (domain.SourceRef, string, error) {
	fields["source"] = ref.Key()
	needsLookup := title == "" || ref.ProjectID == "" || (ref.Type.IsFollowUp() && ref.ParentStoryID == "")
	if needsLookup && s.sources != nil {
		src, err := s.sources.Resolve(ctx, ref)
		if err != nil {
			fields["resolve_error"] = err.Error()
		} else {
			ref = src.Ref()
			if title == "" {
				title = src.Title
			}
		}
	}
	if title == "" {
		title = ref.FallbackTitle()
		fields["title_fallback"] = true
	}
	if ref.ProjectID == "" {
		return ref, title, fmt.Errorf("%w: %s", ErrProjectUnknown, ref.Key())
	}
	if err := ref.Validate(); err != nil {
		return ref, title, err
	}
	return ref, title, nil
}
