package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

// AdminSummary reports submission activity for every programme, including
// ones that have never received a submission.
func (s *Usecase) AdminSummary(ctx context.Context) ([]entity.ProgrammeSummary, error) {
	ctx, span := s.startSpan(ctx, "AdminSummary")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	programmes, err := s.repoDB.ListProgrammes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list programmes", "error", err)
		return nil, goerror.NewDependency(err)
	}

	stats, err := s.repoDB.GetSubmissionStats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get submission stats", "error", err)
		return nil, goerror.NewDependency(err)
	}

	statsByID := lo.KeyBy(stats, func(s entity.ProgrammeSummary) int64 {
		return s.ProgrammeID
	})

	return lo.Map(programmes, func(p entity.Programme, _ int) entity.ProgrammeSummary {
		summary := entity.ProgrammeSummary{
			ProgrammeID:   p.ID,
			ProgrammeName: p.Name,
			Department:    p.Department,
		}
		if stat, ok := statsByID[p.ID]; ok {
			summary.SubmissionCount = stat.SubmissionCount
			summary.LastSubmittedAt = stat.LastSubmittedAt
		}

		return summary
	}), nil
}
