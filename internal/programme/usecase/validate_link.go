package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

// linkError wraps a specific sentinel behind the one message public callers
// are allowed to see. The logs carry the real reason.
func linkError(sentinel error) error {
	return goerror.NewBusinessError(sentinel, "invalid or expired link", goerror.CodeUnauthorized)
}

// ValidateFormLink runs the full token check pipeline for a public form
// request: signature, programme binding, recipient binding, and (when
// one-time tokens are on) the stored token record. Every failure mode maps
// to the same client-facing message so the token cannot be probed.
func (s *Usecase) ValidateFormLink(ctx context.Context, programmeID int64, token string) (*entity.FormAccess, error) {
	ctx, span := s.startSpan(ctx, "ValidateFormLink")
	defer span.End()

	payload, err := s.codec.Decode(token)
	if err != nil {
		slog.WarnContext(ctx, "form token failed verification", "programme_id", programmeID, "reason", err)
		return nil, linkError(entity.ErrBadToken)
	}

	if payload.Pid != programmeID {
		slog.WarnContext(ctx, "form token bound to another programme",
			"programme_id", programmeID, "token_programme_id", payload.Pid)
		return nil, linkError(entity.ErrProgrammeMismatch)
	}

	programme, err := s.repoDB.GetProgramme(ctx, programmeID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "form token references missing programme", "programme_id", programmeID)
		return nil, linkError(goerror.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get programme", "programme_id", programmeID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	if programme.RecipientEmail == "" {
		slog.WarnContext(ctx, "programme has no recipient configured", "programme_id", programmeID)
		return nil, linkError(entity.ErrRecipientNotSet)
	}

	if !strings.EqualFold(payload.Email, programme.RecipientEmail) {
		slog.WarnContext(ctx, "form token recipient no longer matches programme", "programme_id", programmeID)
		return nil, linkError(entity.ErrRecipientMismatch)
	}

	tokenHash := formtoken.Hash(token)

	if s.oneTimeTokens() {
		record, err := s.repoDB.GetFormToken(ctx, tokenHash)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "form token has no stored record", "programme_id", programmeID)
			return nil, linkError(entity.ErrTokenUnknown)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get form token", "programme_id", programmeID, "error", err)
			return nil, goerror.NewDependency(err)
		}

		// Expiry wins over reuse: a token that is both expired and used
		// reports as expired.
		if !s.clock.Now().Before(record.ExpiresAt) {
			slog.WarnContext(ctx, "form token record expired", "programme_id", programmeID)
			return nil, linkError(entity.ErrTokenRecordExpired)
		}

		if record.Used {
			slog.WarnContext(ctx, "form token already used", "programme_id", programmeID)
			return nil, linkError(entity.ErrTokenUsed)
		}
	}

	return &entity.FormAccess{
		Programme:      *programme,
		RecipientEmail: payload.Email,
		TokenHash:      tokenHash,
	}, nil
}
