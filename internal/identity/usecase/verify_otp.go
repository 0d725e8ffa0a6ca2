package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/promonhq/promon/internal/identity/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

// otpError wraps a specific sentinel behind the one message public callers
// are allowed to see. The logs carry the real reason.
func otpError(sentinel error) error {
	return goerror.NewBusinessError(sentinel, "invalid or expired code", goerror.CodeUnauthorized)
}

type VerifyOTPInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,len=6,number"`
}

type VerifyOTPOutput struct {
	User         *entity.User
	SessionToken string
	ExpiresAt    time.Time
	// CookieMaxAge is the session lifetime in seconds, for the Set-Cookie header.
	CookieMaxAge int
}

func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := normalizeEmail(in.Email)

	// Only the most recently issued code counts. Older unexpired codes for
	// the same email are simply never selected.
	otp, err := s.repoDB.GetLatestOTP(ctx, email, in.Code)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp code not found", "email", email)
		return nil, otpError(entity.ErrCodeInvalid)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest otp", "email", email, "error", err)
		return nil, goerror.NewDependency(err)
	}

	if otp.Used {
		slog.WarnContext(ctx, "otp code already used", "email", email, "otp_id", otp.ID)
		return nil, otpError(entity.ErrCodeUsed)
	}

	if !s.clock.Now().Before(otp.ExpiresAt) {
		slog.WarnContext(ctx, "otp code expired", "email", email, "otp_id", otp.ID)
		return nil, otpError(entity.ErrCodeExpired)
	}

	// Mark the code used before issuing a session so a concurrent replay of
	// the same code cannot get a second session from this row.
	if err := s.repoDB.MarkOTPUsed(ctx, otp.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark otp used", "otp_id", otp.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	user, err := s.findOrCreateUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if user, err = s.promoteIfConfiguredAdmin(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.credential.SessionToken()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.cfg.GetDay("modules.identity.session_ttl_days")
	expiresAt := s.credential.SessionExpiry(ttl)

	if err := s.repoDB.CreateSession(ctx, entity.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "user_id", user.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	return &VerifyOTPOutput{
		User:         user,
		SessionToken: token,
		ExpiresAt:    expiresAt,
		CookieMaxAge: int(ttl.Seconds()),
	}, nil
}

func (s *Usecase) findOrCreateUser(ctx context.Context, email string) (*entity.User, error) {
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewDependency(err)
	}

	fresh := entity.User{
		ID:    s.uid.Generate(),
		Email: email,
		Role:  entity.RoleUser,
	}

	err = s.repoDB.CreateUser(ctx, fresh)
	if errors.Is(err, goerror.ErrConflict) {
		// Another verification for the same email won the race.
		user, err = s.repoDB.GetUserByEmail(ctx, email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo re-get user after conflict", "email", email, "error", err)
			return nil, goerror.NewDependency(err)
		}

		return user, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", email, "error", err)
		return nil, goerror.NewDependency(err)
	}

	return &fresh, nil
}

// promoteIfConfiguredAdmin lifts a configured admin email to the admin role.
// Promotion runs on every login and never demotes: removing an email from the
// configuration does not touch existing admin users.
func (s *Usecase) promoteIfConfiguredAdmin(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.Role == entity.RoleAdmin || !s.isConfiguredAdmin(user.Email) {
		return user, nil
	}

	if err := s.repoDB.UpdateUserRole(ctx, user.ID, entity.RoleAdmin); err != nil {
		slog.ErrorContext(ctx, "failed to repo promote user to admin", "user_id", user.ID, "error", err)
		return nil, goerror.NewDependency(err)
	}

	promoted := *user
	promoted.Role = entity.RoleAdmin

	return &promoted, nil
}
