package usecase

import (
	"context"
	"log/slog"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/report/entity"
)

// ListReports returns monthly reports, newest first. Admins see every report,
// regular users only their own.
func (s *Usecase) ListReports(ctx context.Context) ([]entity.MonthlyReport, error) {
	ctx, span := s.startSpan(ctx, "ListReports")
	defer span.End()

	user, err := s.authz.ResolveSession(ctx)
	if err != nil {
		return nil, err
	}

	var reports []entity.MonthlyReport
	if user.IsAdmin() {
		reports, err = s.repoDB.ListReports(ctx)
	} else {
		reports, err = s.repoDB.ListReportsByUser(ctx, user.ID)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list reports", "error", err)

		return nil, goerror.NewDependency(err)
	}

	return reports, nil
}
