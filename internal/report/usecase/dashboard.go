package usecase

import (
	"context"
	"log/slog"
	"math"

	"github.com/promonhq/promon/internal/pkg/goerror"
)

type DashboardOutput struct {
	TotalYouthRegistered   int64
	TotalTrained           int64
	TotalYouthFunded       int64
	TotalYouthWithOutcomes int64
	TotalReports           int64
	TrainingPercentage     float64
}

// Dashboard aggregates every monthly report into system-wide totals. Admin
// only.
func (s *Usecase) Dashboard(ctx context.Context) (*DashboardOutput, error) {
	ctx, span := s.startSpan(ctx, "Dashboard")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	totals, err := s.repoDB.GetDashboardTotals(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get dashboard totals", "error", err)

		return nil, goerror.NewDependency(err)
	}

	var pct float64
	if totals.TotalYouthRegistered > 0 {
		pct = float64(totals.TotalTrained) / float64(totals.TotalYouthRegistered) * 100
		pct = math.Round(pct*100) / 100
	}

	return &DashboardOutput{
		TotalYouthRegistered:   totals.TotalYouthRegistered,
		TotalTrained:           totals.TotalTrained,
		TotalYouthFunded:       totals.TotalYouthFunded,
		TotalYouthWithOutcomes: totals.TotalYouthWithOutcomes,
		TotalReports:           totals.TotalReports,
		TrainingPercentage:     pct,
	}, nil
}
