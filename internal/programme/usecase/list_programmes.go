package usecase

import (
	"context"
	"log/slog"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

func (s *Usecase) ListProgrammes(ctx context.Context) ([]entity.Programme, error) {
	ctx, span := s.startSpan(ctx, "ListProgrammes")
	defer span.End()

	if _, err := s.authz.ResolveSession(ctx); err != nil {
		return nil, err
	}

	programmes, err := s.repoDB.ListProgrammes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list programmes", "error", err)
		return nil, goerror.NewDependency(err)
	}

	return programmes, nil
}
