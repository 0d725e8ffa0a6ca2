package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/valueobject"
)

type SubmitFormInput struct {
	ProgrammeID   int64
	Token         string
	ProgrammeName string              `validate:"required"`
	FormData      valueobject.JSONMap `validate:"required"`
}

type SubmitFormOutput struct {
	SubmissionID int64
}

// SubmitForm accepts a public form submission. The token is re-validated at
// submit time, the submission and the token consumption commit together, and
// only after that durable commit is the admin notified.
func (s *Usecase) SubmitForm(ctx context.Context, in SubmitFormInput) (*SubmitFormOutput, error) {
	ctx, span := s.startSpan(ctx, "SubmitForm")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	access, err := s.ValidateFormLink(ctx, in.ProgrammeID, in.Token)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(strings.TrimSpace(in.ProgrammeName), access.Programme.Name) {
		slog.WarnContext(ctx, "submitted programme name does not match",
			"programme_id", access.Programme.ID)
		return nil, goerror.NewBusinessError(entity.ErrProgrammeNameMismatch,
			"programme name does not match this form link", goerror.CodeInvalidInput)
	}

	consumeHash := ""
	if s.oneTimeTokens() {
		consumeHash = access.TokenHash
	}

	submission := entity.FormSubmission{
		ID:             s.uid.Generate(),
		ProgrammeID:    access.Programme.ID,
		RecipientEmail: access.RecipientEmail,
		FormData:       in.FormData,
		SubmittedAt:    s.clock.Now(),
	}

	err = s.repoDB.CreateSubmission(ctx, submission, consumeHash)
	if errors.Is(err, goerror.ErrConflict) {
		// A concurrent submission consumed the token first.
		slog.WarnContext(ctx, "form token consumed concurrently", "programme_id", access.Programme.ID)
		return nil, linkError(entity.ErrTokenUsed)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create submission",
			"programme_id", access.Programme.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	s.notifyAdmin(ctx, access.Programme, submission)

	return &SubmitFormOutput{SubmissionID: submission.ID}, nil
}

// notifyAdmin emails the configured admin about a new submission. It is best
// effort: the submission is already durable, so a notification failure is
// only logged.
func (s *Usecase) notifyAdmin(ctx context.Context, programme entity.Programme, submission entity.FormSubmission) {
	adminEmail := s.cfg.GetString("modules.programme.admin_email")
	if adminEmail == "" {
		return
	}

	// Detached from the request context so the notification survives the
	// response being written.
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		err := s.mailer.Send(ctx, mail.Message{
			To:      []string{adminEmail},
			Subject: fmt.Sprintf("New submission for %s", programme.Name),
			TextBody: fmt.Sprintf("A new form submission for programme %q was received from %s.",
				programme.Name, submission.RecipientEmail),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to send admin notification",
				"programme_id", programme.ID, "error", err)
		}

		return nil
	})
}
