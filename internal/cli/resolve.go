package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/cli/formatter"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"go.uber.org/zap"
)

func zapPath(p string) zap.Field {
	return zap.String("path", p)
}

// resolvePhase accepts "CODE#seq" (e.g. KIS01#3) or a phase id.
func resolvePhase(ctx context.Context, a *App, ref string) (*domain.Phase, error) {
	ref = strings.TrimSpace(ref)
	code, seqStr, ok := strings.Cut(ref, "#")
	if !ok {
		return a.Phases.GetByID(ctx, ref)
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq < 1 {
		return nil, app.InvalidInput("phase reference %q: sequence must be a positive number", ref)
	}
	project, err := a.Projects.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	phases, err := a.Phases.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range phases {
		if p.Sequence == seq {
			return p, nil
		}
	}
	return nil, app.NotFound("phase #%d in project %s", seq, project.DisplayID())
}

// resolvePhaseIDs resolves each reference, accepting bare "#seq" or "seq"
// within project.
func resolvePhaseIDs(ctx context.Context, a *App, project *domain.Project, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(ref, "#")); err == nil {
			ref = fmt.Sprintf("%s#%d", project.Code, n)
		} else if strings.HasPrefix(ref, "#") {
			ref = project.Code + ref
		}
		p, err := resolvePhase(ctx, a, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// phaseLabels maps every phase of project to "#seq Name".
func phaseLabels(ctx context.Context, a *App, projectID string) (formatter.PhaseLabels, error) {
	phases, err := a.Phases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	labels := make(formatter.PhaseLabels, len(phases))
	for _, p := range phases {
		labels[p.ID] = p.Label()
	}
	return labels, nil
}
