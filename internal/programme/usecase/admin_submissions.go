package usecase

import (
	"context"
	"log/slog"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

const (
	defaultSubmissionLimit = 50
	maxSubmissionLimit     = 200
)

type AdminSubmissionsInput struct {
	// ProgrammeID filters to one programme when non-zero.
	ProgrammeID int64
	Limit       int32
	Offset      int32
}

func (s *Usecase) AdminSubmissions(ctx context.Context, in AdminSubmissionsInput) ([]entity.FormSubmission, error) {
	ctx, span := s.startSpan(ctx, "AdminSubmissions")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultSubmissionLimit
	}
	if limit > maxSubmissionLimit {
		limit = maxSubmissionLimit
	}

	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	submissions, err := s.repoDB.ListSubmissions(ctx, in.ProgrammeID, limit, offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list submissions", "error", err)
		return nil, goerror.NewDependency(err)
	}

	return submissions, nil
}
