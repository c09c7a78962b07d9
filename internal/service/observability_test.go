package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapUseCaseObserver(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := NewZapUseCaseObserver(zap.New(core))
	ctx := context.Background()

	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name: "create-project", Success: true, Duration: 3 * time.Millisecond,
		Fields: map[string]any{"project_id": "p1"},
	})
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name: "approve-reallocation", Err: app.InvalidState("request r1 is EXECUTED"),
	})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	ok := entries[0].ContextMap()
	assert.Equal(t, "create-project", ok["use_case"])
	assert.Equal(t, int64(3), ok["duration_ms"])
	assert.Equal(t, true, ok["success"])
	assert.Equal(t, "p1", ok["project_id"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	failed := entries[1].ContextMap()
	assert.Equal(t, "INVALID_STATE", failed["error_code"])
	assert.Equal(t, false, failed["success"])
}

func TestZapUseCaseObserver_NilLoggerIsNoop(t *testing.T) {
	obs := NewZapUseCaseObserver(nil)
	assert.IsType(t, NoopUseCaseObserver{}, obs)
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Err: errors.New("ignored")})
}

func TestObserve_CapturesNamedError(t *testing.T) {
	rec := &recordingObserver{}
	run := func() (err error) {
		defer observe(context.Background(), rec, "delete-phase", time.Now(), nil, &err)
		return app.NotFound("phase p1 not found")
	}
	require.Error(t, run())

	events := rec.byName("delete-phase")
	require.Len(t, events, 1)
	assert.False(t, events[0].Success)
	assert.Equal(t, app.ErrCodeNotFound, app.ErrorCodeOf(events[0].Err))
}
