package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Victorkib/kisheka-construction-sub013/internal/config"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/Victorkib/kisheka-construction-sub013/internal/service"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"
)

// OutboxDrainer delivers stored events that were not delivered inline.
type OutboxDrainer interface {
	DispatchPending(ctx context.Context) (outbox.Result, error)
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects      service.ProjectService
	Phases        service.PhaseService
	Summary       service.SummaryService
	Recalc        service.RecalculationService
	Capital       service.CapitalService
	Reallocations service.ReallocationService
	Spend         service.SpendService
	Import        service.ImportService
	Outbox        OutboxDrainer

	// IsInteractive reports whether stdin is a terminal. Prompts are only
	// shown when it returns true.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Defaults to a huh confirm form.
	Confirm func(title string) (bool, error)

	logger *zap.Logger
	close  func() error
}

func (a *App) wired() bool {
	return a.Projects != nil
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return huhConfirm(title)
}

// Close releases the database opened by the root command, if any.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	err := a.close()
	a.close = nil
	return err
}

func huhConfirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Approve").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// Wire builds every service over database. Spend events are delivered
// inline through the same dispatcher that `outbox drain` uses.
func Wire(database *sql.DB, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	uow := db.NewSQLiteUnitOfWork(database)

	projectRepo := repository.NewSQLiteProjectRepo(database)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	requestRepo := repository.NewSQLiteReallocationRepo(database)
	spendRepo := repository.NewSQLiteSpendRepo(database)
	capitalRepo := repository.NewSQLiteCapitalRepo(database)
	auditRepo := repository.NewSQLiteAuditRepo(database)
	outboxRepo := repository.NewSQLiteOutboxRepo(database)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithObserver(service.NewZapUseCaseObserver(logger)),
	}

	recalc := service.NewRecalculationService(uow, phaseRepo, projectRepo, capitalRepo,
		service.RecalcConfig{
			Concurrency: cfg.Recalc.Concurrency,
			MaxRetries:  cfg.Recalc.MaxRetries,
		}, opts...)

	registry := outbox.NewHandlerRegistry()
	if err := service.RegisterSpendChangedHandler(registry, recalc); err != nil {
		return nil, fmt.Errorf("registering outbox handlers: %w", err)
	}
	dispatcher, err := outbox.NewDispatcher(outboxRepo, registry, logger.Named("outbox"),
		outbox.WithConfig(outbox.Config{
			BatchSize:   cfg.Outbox.BatchSize,
			MaxAttempts: cfg.Outbox.MaxAttempts,
		}),
		outbox.WithNonRetryable(service.IsPermanentDispatchError))
	if err != nil {
		return nil, fmt.Errorf("creating outbox dispatcher: %w", err)
	}

	return &App{
		Projects:      service.NewProjectService(uow, projectRepo, opts...),
		Phases:        service.NewPhaseService(uow, projectRepo, phaseRepo, opts...),
		Summary:       service.NewSummaryService(phaseRepo, repository.CostAggregators(database), opts...),
		Recalc:        recalc,
		Capital:       service.NewCapitalService(projectRepo, capitalRepo, opts...),
		Reallocations: service.NewReallocationService(uow, projectRepo, phaseRepo, requestRepo, auditRepo, recalc, opts...),
		Spend:         service.NewSpendService(uow, phaseRepo, spendRepo, dispatcher, opts...),
		Import:        service.NewImportService(uow, opts...),
		Outbox:        dispatcher,
		logger:        logger,
	}, nil
}

// adopt copies the services of w into a, keeping a's terminal hooks.
func (a *App) adopt(w *App) {
	a.Projects = w.Projects
	a.Phases = w.Phases
	a.Summary = w.Summary
	a.Recalc = w.Recalc
	a.Capital = w.Capital
	a.Reallocations = w.Reallocations
	a.Spend = w.Spend
	a.Import = w.Import
	a.Outbox = w.Outbox
	a.logger = w.logger
}
