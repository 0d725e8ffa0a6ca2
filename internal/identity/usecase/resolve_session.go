package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/session"
)

// ResolveSession turns the session token carried in the context into an
// authenticated principal. Expired sessions are deleted on sight, so the
// store cleans itself up lazily as stale cookies come back.
func (s *Usecase) ResolveSession(ctx context.Context) (*session.User, error) {
	ctx, span := s.startSpan(ctx, "ResolveSession")
	defer span.End()

	token := session.GetToken(ctx)
	if token == "" {
		return nil, goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)
	}

	sess, err := s.repoDB.GetSession(ctx, token)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Invalid session", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get session", "error", err)
		return nil, goerror.NewDependency(err)
	}

	if !s.clock.Now().Before(sess.ExpiresAt) {
		if err := s.repoDB.DeleteSession(ctx, token); err != nil && !errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "failed to repo delete expired session", "error", err)
		}

		return nil, goerror.NewBusiness("Session expired", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "session points to missing user", "user_id", sess.UserID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", sess.UserID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	return &session.User{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role.Ensure().String(),
	}, nil
}

// RequireAdmin resolves the session and rejects non-admin principals.
func (s *Usecase) RequireAdmin(ctx context.Context) (*session.User, error) {
	user, err := s.ResolveSession(ctx)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		return nil, goerror.NewBusiness("Admin access required", goerror.CodeForbidden)
	}

	return user, nil
}
