package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
)

type CreateFormLinkInput struct {
	ProgrammeID int64  `validate:"required"`
	Email       string `validate:"required,email"`
}

type CreateFormLinkOutput struct {
	Programme entity.Programme
	Link      string
	Token     string
	ExpiresAt time.Time
}

// CreateFormLink issues a signed link that lets the given recipient open the
// programme's form without logging in. Issuing a link for a new recipient
// rebinds the programme to that recipient.
func (s *Usecase) CreateFormLink(ctx context.Context, in CreateFormLinkInput) (*CreateFormLinkOutput, error) {
	ctx, span := s.startSpan(ctx, "CreateFormLink")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.buildFormLink(ctx, in.ProgrammeID, in.Email)
}

type SendFormLinkInput struct {
	ProgrammeID int64  `validate:"required"`
	Email       string `validate:"required,email"`
}

type SendFormLinkOutput struct {
	Programme entity.Programme
	Link      string
	ExpiresAt time.Time
}

// SendFormLink issues a form link and emails it to the recipient. Delivery
// failure fails the whole operation; the admin needs to know the link did
// not go out.
func (s *Usecase) SendFormLink(ctx context.Context, in SendFormLinkInput) (*SendFormLinkOutput, error) {
	ctx, span := s.startSpan(ctx, "SendFormLink")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	link, err := s.buildFormLink(ctx, in.ProgrammeID, in.Email)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"You have been invited to fill in the %s programme form.\n\nOpen the link below to get started:\n%s\n\nThis link expires on %s.",
		link.Programme.Name,
		link.Link,
		link.ExpiresAt.Format(time.RFC1123),
	)

	if err := s.mailer.Send(ctx, mail.Message{
		To:       []string{link.Programme.RecipientEmail},
		Subject:  fmt.Sprintf("Form link for %s", link.Programme.Name),
		TextBody: body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send form link email",
			"programme_id", link.Programme.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	return &SendFormLinkOutput{
		Programme: link.Programme,
		Link:      link.Link,
		ExpiresAt: link.ExpiresAt,
	}, nil
}

func (s *Usecase) buildFormLink(ctx context.Context, programmeID int64, email string) (*CreateFormLinkOutput, error) {
	programme, err := s.repoDB.GetProgramme(ctx, programmeID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("programme not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get programme", "programme_id", programmeID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	recipient := strings.ToLower(strings.TrimSpace(email))

	if programme.RecipientEmail != recipient {
		if err := s.repoDB.UpdateProgrammeRecipient(ctx, programme.ID, recipient); err != nil {
			slog.ErrorContext(ctx, "failed to repo rebind programme recipient",
				"programme_id", programme.ID, "error", err)
			return nil, goerror.NewDependency(err)
		}
		programme.RecipientEmail = recipient
	}

	ttl := s.cfg.GetHour("modules.programme.form_token_ttl_hours")

	token, err := s.codec.Encode(programme.ID, recipient, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode form token", "programme_id", programme.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresAt := s.clock.Now().Add(ttl)
	if err := s.repoDB.CreateFormToken(ctx, entity.FormToken{
		TokenHash:      formtoken.Hash(token),
		ProgrammeID:    programme.ID,
		RecipientEmail: recipient,
		ExpiresAt:      expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create form token", "programme_id", programme.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	baseURL := strings.TrimRight(s.cfg.GetString("modules.programme.base_url"), "/")
	link := fmt.Sprintf("%s/forms/%d?token=%s", baseURL, programme.ID, token)

	return &CreateFormLinkOutput{
		Programme: *programme,
		Link:      link,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
