package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/promonhq/promon/internal/identity/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
)

type RequestOTPInput struct {
	Email string `validate:"required,email"`
}

func (s *Usecase) RequestOTP(ctx context.Context, in RequestOTPInput) error {
	ctx, span := s.startSpan(ctx, "RequestOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	email := normalizeEmail(in.Email)

	code, err := s.credential.OTP()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return goerror.NewServer(err)
	}

	otp := entity.OTP{
		ID:        s.uid.Generate(),
		Email:     email,
		Code:      code,
		ExpiresAt: s.credential.OTPExpiry(s.cfg.GetMinute("modules.identity.otp_ttl_minutes")),
	}
	if err := s.repoDB.CreateOTP(ctx, otp); err != nil {
		slog.ErrorContext(ctx, "failed to repo create otp", "email", email, "error", err)
		return goerror.NewDependency(err)
	}

	// The login flow cannot continue without the code, so delivery failures
	// surface to the caller instead of being queued.
	if err := s.mailer.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  "Your login code",
		TextBody: fmt.Sprintf("Your one-time login code is %s. It expires in %d minutes.", code, s.cfg.GetInt("modules.identity.otp_ttl_minutes")),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "email", email, "error", err)
		return goerror.NewDependency(err)
	}

	return nil
}
