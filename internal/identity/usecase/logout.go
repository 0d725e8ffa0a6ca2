package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/session"
)

// Logout deletes the caller's session. Calling it without a session cookie
// is an authentication failure; deleting a session that is already gone is
// not, since the caller still ends up logged out.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	token := session.GetToken(ctx)
	if token == "" {
		return goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)
	}

	err := s.repoDB.DeleteSession(ctx, token)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo delete session", "error", err)
		return goerror.NewDependency(err)
	}

	return nil
}
