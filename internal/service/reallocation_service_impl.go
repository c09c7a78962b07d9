package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/db"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/repository"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type reallocationService struct {
	uow      db.UnitOfWork
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	requests repository.ReallocationRepo
	audit    repository.AuditRepo
	recalc   RecalculationService
	opts     options
}

func NewReallocationService(
	uow db.UnitOfWork,
	projects repository.ProjectRepo,
	phases repository.PhaseRepo,
	requests repository.ReallocationRepo,
	audit repository.AuditRepo,
	recalc RecalculationService,
	opts ...Option,
) ReallocationService {
	return &reallocationService{
		uow:      uow,
		projects: projects,
		phases:   phases,
		requests: requests,
		audit:    audit,
		recalc:   recalc,
		opts:     buildOptions(opts),
	}
}

// Create stores a PENDING request. Budgets are not checked here; approval
// checks them against the state at that time.
func (s *reallocationService) Create(ctx context.Context, req app.CreateReallocationRequest) (r *domain.BudgetReallocationRequest, err error) {
	startedAt := time.Now()
	fields := map[string]any{"project_id": req.ProjectID, "type": string(req.Type)}
	defer observe(ctx, s.opts.observer, "create-reallocation", startedAt, fields, &err)

	now := s.opts.now().Truncate(time.Second)
	r = &domain.BudgetReallocationRequest{
		ID:          uuid.New().String(),
		ProjectID:   req.ProjectID,
		Type:        domain.ReallocationType(strings.ToUpper(string(req.Type))),
		FromPhaseID: blankToNil(req.FromPhaseID),
		ToPhaseID:   blankToNil(req.ToPhaseID),
		Amount:      req.Amount,
		Reason:      strings.TrimSpace(req.Reason),
		RequestedBy: strings.TrimSpace(req.RequestedBy),
		Status:      domain.ReallocationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return nil, app.InvalidInput("%s", err.Error())
	}
	if r.RequestedBy == "" {
		return nil, app.InvalidInput("requester is required")
	}

	project, err := loadLiveProject(ctx, s.projects, r.ProjectID)
	if err != nil {
		return nil, err
	}
	for _, ref := range []*string{r.FromPhaseID, r.ToPhaseID} {
		if ref == nil {
			continue
		}
		p, err := loadLivePhase(ctx, s.phases, *ref)
		if err != nil {
			return nil, err
		}
		if p.ProjectID != project.ID {
			return nil, app.InvalidInput("phase %s does not belong to project %s", p.ID, project.DisplayID())
		}
	}

	if err := s.requests.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("storing reallocation request: %w", err)
	}
	fields["request_id"] = r.ID
	return r, nil
}

// Approve executes a PENDING request. The reload, the availability checks,
// both sides of the transfer, the status change and the audit record commit
// together or not at all. Affected phases are recalculated after commit;
// failures there are reported as warnings on the response.
func (s *reallocationService) Approve(ctx context.Context, req app.ApproveReallocationRequest) (resp *app.ApproveReallocationResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{"request_id": req.RequestID}
	defer observe(ctx, s.opts.observer, "approve-reallocation", startedAt, fields, &err)

	ctx, span := s.opts.tracer.Start(ctx, "reallocation.approve",
		trace.WithAttributes(attribute.String("reallocation.id", req.RequestID)))
	defer func() { endSpan(span, err) }()

	approver := strings.TrimSpace(req.ApproverID)
	if approver == "" {
		return nil, app.InvalidInput("approver is required")
	}

	resp = &app.ApproveReallocationResponse{}
	var affected []string

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		requests := repository.NewSQLiteReallocationRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)
		phases := repository.NewSQLitePhaseRepo(tx)
		ledger := repository.NewSQLiteCapitalRepo(tx)
		audit := repository.NewSQLiteAuditRepo(tx)

		r, err := requests.GetByID(ctx, req.RequestID)
		if err != nil {
			return translateRepoErr(err, "reallocation request", req.RequestID)
		}
		if r.Status != domain.ReallocationPending {
			return app.InvalidState("reallocation request %s is %s, not %s",
				r.ID, r.Status, domain.ReallocationPending)
		}
		span.SetAttributes(
			attribute.String("reallocation.type", string(r.Type)),
			attribute.String("project.id", r.ProjectID),
			attribute.String("reallocation.amount", r.Amount.String()),
		)
		fields["type"] = string(r.Type)
		fields["amount"] = r.Amount.String()

		project, err := loadLiveProject(ctx, projects, r.ProjectID)
		if err != nil {
			return err
		}

		t, err := planTransfer(ctx, phases, project, r)
		if err != nil {
			return err
		}

		check, err := checkCapital(ctx, ledger, s.opts.logger, project.ID, r.Amount)
		switch {
		case err != nil:
			s.opts.logger.Warn("capital check unavailable during reallocation",
				zap.String("request_id", r.ID), zap.Error(err))
			resp.Warnings = append(resp.Warnings, app.Warning{
				Code:    app.WarnCapitalThreshold,
				Message: fmt.Sprintf("capital availability could not be checked: %v", err),
			})
		case check.Warning:
			resp.Warnings = append(resp.Warnings, capitalWarning(check))
		}
		resp.Capital = check

		if err := t.apply(ctx, phases, projects); err != nil {
			return err
		}

		from := r.Status
		if err := r.MarkExecuted(approver, req.Notes, s.opts.now().Truncate(time.Second)); err != nil {
			return app.InvalidState("%s", err.Error())
		}
		if err := requests.Transition(ctx, r, from); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return app.InvalidState("reallocation request %s is no longer %s", r.ID, from)
			}
			return fmt.Errorf("executing reallocation request %s: %w", r.ID, err)
		}

		if err := audit.Record(ctx, auditRecord(r, domain.AuditActionExecuted, approver, from, map[string]string{
			"type":           string(r.Type),
			"from_phase_id":  derefString(r.FromPhaseID),
			"to_phase_id":    derefString(r.ToPhaseID),
			"approval_notes": req.Notes,
		})); err != nil {
			return fmt.Errorf("recording audit for reallocation %s: %w", r.ID, err)
		}

		resp.Request = r
		affected = t.phaseIDs()
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, phaseID := range affected {
		summary, rerr := s.recalc.RecalculatePhase(ctx, phaseID)
		if rerr != nil {
			s.opts.logger.Warn("phase recalculation failed after reallocation",
				zap.String("request_id", resp.Request.ID),
				zap.String("phase_id", phaseID),
				zap.Error(rerr))
			resp.Warnings = append(resp.Warnings, app.Warning{
				Code:    app.WarnPartialFailure,
				PhaseID: phaseID,
				Message: fmt.Sprintf("reallocation executed but phase summary is stale: %v", rerr),
			})
			continue
		}
		resp.Summaries = append(resp.Summaries, summary)
	}
	fields["warnings"] = len(resp.Warnings)
	return resp, nil
}

func (s *reallocationService) Reject(ctx context.Context, req app.RejectReallocationRequest) (r *domain.BudgetReallocationRequest, err error) {
	startedAt := time.Now()
	fields := map[string]any{"request_id": req.RequestID}
	defer observe(ctx, s.opts.observer, "reject-reallocation", startedAt, fields, &err)

	ctx, span := s.opts.tracer.Start(ctx, "reallocation.reject",
		trace.WithAttributes(attribute.String("reallocation.id", req.RequestID)))
	defer func() { endSpan(span, err) }()

	rejector := strings.TrimSpace(req.RejectorID)
	if rejector == "" {
		return nil, app.InvalidInput("rejector is required")
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		requests := repository.NewSQLiteReallocationRepo(tx)
		audit := repository.NewSQLiteAuditRepo(tx)

		loaded, err := requests.GetByID(ctx, req.RequestID)
		if err != nil {
			return translateRepoErr(err, "reallocation request", req.RequestID)
		}
		from := loaded.Status
		if err := loaded.MarkRejected(rejector, strings.TrimSpace(req.Reason), s.opts.now().Truncate(time.Second)); err != nil {
			return app.InvalidState("reallocation request %s is %s, not %s",
				loaded.ID, from, domain.ReallocationPending)
		}
		if err := requests.Transition(ctx, loaded, from); err != nil {
			if errors.Is(err, repository.ErrStatusConflict) {
				return app.InvalidState("reallocation request %s is no longer %s", loaded.ID, from)
			}
			return fmt.Errorf("rejecting reallocation request %s: %w", loaded.ID, err)
		}
		if err := audit.Record(ctx, auditRecord(loaded, domain.AuditActionRejected, rejector, from, map[string]string{
			"type":   string(loaded.Type),
			"reason": derefString(loaded.RejectionReason),
		})); err != nil {
			return fmt.Errorf("recording audit for reallocation %s: %w", loaded.ID, err)
		}
		r = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *reallocationService) GetByID(ctx context.Context, id string) (*domain.BudgetReallocationRequest, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err, "reallocation request", id)
	}
	return r, nil
}

func (s *reallocationService) List(ctx context.Context, req app.ListReallocationsRequest) ([]*domain.BudgetReallocationRequest, error) {
	if _, err := loadLiveProject(ctx, s.projects, req.ProjectID); err != nil {
		return nil, err
	}
	return s.requests.ListByProject(ctx, req.ProjectID, req.Status)
}

func (s *reallocationService) AuditTrail(ctx context.Context, requestID string) ([]*domain.AuditRecord, error) {
	if _, err := s.GetByID(ctx, requestID); err != nil {
		return nil, err
	}
	return s.audit.ListByEntity(ctx, domain.AuditEntityReallocation, requestID)
}

func auditRecord(r *domain.BudgetReallocationRequest, action, actor string, from domain.ReallocationStatus, details map[string]string) *domain.AuditRecord {
	for k, v := range details {
		if v == "" {
			delete(details, k)
		}
	}
	return &domain.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: domain.AuditEntityReallocation,
		EntityID:   r.ID,
		Action:     action,
		Actor:      actor,
		OldStatus:  string(from),
		NewStatus:  string(r.Status),
		Amount:     r.Amount,
		Details:    details,
		CreatedAt:  r.UpdatedAt,
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
