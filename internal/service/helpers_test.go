package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/Victorkib/kisheka-construction-sub013/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// testEnv bundles a migrated database with plain repositories for seeding
// and assertions.
type testEnv struct {
	db       *sql.DB
	uow      db.UnitOfWork
	projects *repository.SQLiteProjectRepo
	phases   *repository.SQLitePhaseRepo
	requests *repository.SQLiteReallocationRepo
	spend    *repository.SQLiteSpendRepo
	capital  *repository.SQLiteCapitalRepo
	audit    *repository.SQLiteAuditRepo
	events   *repository.SQLiteOutboxRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithDB(testutil.NewTestDB(t))
}

func newTestEnvWithDB(database *sql.DB) *testEnv {
	return &testEnv{
		db:       database,
		uow:      testutil.NewTestUoW(database),
		projects: repository.NewSQLiteProjectRepo(database),
		phases:   repository.NewSQLitePhaseRepo(database),
		requests: repository.NewSQLiteReallocationRepo(database),
		spend:    repository.NewSQLiteSpendRepo(database),
		capital:  repository.NewSQLiteCapitalRepo(database),
		audit:    repository.NewSQLiteAuditRepo(database),
		events:   repository.NewSQLiteOutboxRepo(database),
	}
}

func (e *testEnv) recalcService(opts ...Option) RecalculationService {
	return NewRecalculationService(e.uow, e.phases, e.projects, e.capital,
		RecalcConfig{BaseDelay: time.Millisecond}, opts...)
}

func (e *testEnv) reallocationService(recalc RecalculationService, opts ...Option) ReallocationService {
	if recalc == nil {
		recalc = e.recalcService()
	}
	return NewReallocationService(e.uow, e.projects, e.phases, e.requests, e.audit, recalc, opts...)
}

func (e *testEnv) seedProject(t *testing.T, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject("Riverside Tower", opts...)
	require.NoError(t, e.projects.Create(context.Background(), p))
	return p
}

func (e *testEnv) seedPhase(t *testing.T, projectID, name string, opts ...testutil.PhaseOption) *domain.Phase {
	t.Helper()
	ph := testutil.NewTestPhase(projectID, name, opts...)
	require.NoError(t, e.phases.Create(context.Background(), ph))
	return ph
}

func (e *testEnv) seedSpend(t *testing.T, phaseID string, category domain.CostCategory, amount string, status domain.SpendStatus) *domain.SpendEntry {
	t.Helper()
	entry := testutil.NewTestSpendEntry(phaseID, category, amount, testutil.WithSpendStatus(status))
	require.NoError(t, e.spend.Create(context.Background(), entry))
	return entry
}

func (e *testEnv) seedCapital(t *testing.T, projectID string, kind domain.CapitalKind, amount string) {
	t.Helper()
	require.NoError(t, e.capital.Append(context.Background(), testutil.NewTestCapitalEntry(projectID, kind, amount)))
}

func (e *testEnv) seedRequest(t *testing.T, r *domain.BudgetReallocationRequest) *domain.BudgetReallocationRequest {
	t.Helper()
	require.NoError(t, e.requests.Create(context.Background(), r))
	return r
}

func (e *testEnv) phase(t *testing.T, id string) *domain.Phase {
	t.Helper()
	p, err := e.phases.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) project(t *testing.T, id string) *domain.Project {
	t.Helper()
	p, err := e.projects.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) request(t *testing.T, id string) *domain.BudgetReallocationRequest {
	t.Helper()
	r, err := e.requests.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

// observedLogger captures WARN and above.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

func requireCode(t *testing.T, err error, code app.BudgetErrorCode) *app.BudgetError {
	t.Helper()
	require.Error(t, err)
	var be *app.BudgetError
	require.True(t, errors.As(err, &be), "expected a BudgetError, got %v", err)
	require.Equal(t, code, be.Code, "unexpected error: %v", err)
	return be
}

func warningCodes(ws []app.Warning) []app.WarningCode {
	codes := make([]app.WarningCode, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

// recordingObserver keeps every use-case event.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *recordingObserver) byName(name string) []UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []UseCaseEvent
	for _, ev := range o.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}
