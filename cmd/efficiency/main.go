package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexanderramin/efficiency/internal/cli"
	"github.com/alexanderramin/efficiency/internal/config"
	"github.com/alexanderramin/efficiency/internal/db"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/ledger"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/repository"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	store, err := openStateStore(cfg, database)
	if err != nil {
		return err
	}

	// Call and use-case logs go to stderr so stdout stays clean.
	var logOut io.Writer
	var observer ledger.Observer = ledger.NoopObserver{}
	if cfg.LogCalls {
		logOut = os.Stderr
		observer = ledger.NewLogObserver(os.Stderr)
	}
	useCases := service.NewLogUseCaseObserver(logOut)

	client := ledger.NewClient(ledger.Config{
		BaseURL:    cfg.APIURL,
		Token:      cfg.APIToken,
		Timeout:    time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond,
		MaxRetries: cfg.MaxRetries,
	}, observer)

	journal := repository.NewSQLiteJournalRepo(database)
	sources := service.NewSourceService(client, useCases)
	coord := reconcile.NewCoordinator(client, reconcile.Gateways{
		domain.SourceStoryFollowUp:   client.StoryFollowUps(),
		domain.SourceProgramFollowUp: client.ProgramFollowUps(),
	}, sources, journal)

	app := &cli.App{
		Timer:           service.NewTimerService(context.Background(), timer.SystemClock{}, store, coord, sources, useCases),
		Sources:         sources,
		WorkLogs:        service.NewWorkLogService(client, journal, useCases),
		RefreshInterval: time.Duration(cfg.RefreshMs) * time.Millisecond,
		Listen:          cfg.Listen,
		RateLimit:       cfg.RateLimit,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

// openStateStore returns the configured mirror for the session and stack.
func openStateStore(cfg config.Config, database *sql.DB) (timer.StateStore, error) {
	switch cfg.StateBackend {
	case config.BackendFile:
		store, err := repository.NewFileStateRepo(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("opening state directory: %w", err)
		}
		return store, nil
	default:
		return repository.NewSQLiteStateRepo(database).
			WithUnitOfWork(db.NewSQLiteUnitOfWork(database)), nil
	}
}
