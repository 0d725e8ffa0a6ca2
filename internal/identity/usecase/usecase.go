package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/promonhq/promon/internal/identity/entity"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/credential"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
)

type repoDB interface {
	GetLatestOTP(ctx context.Context, email, code string) (*entity.OTP, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetSession(ctx context.Context, token string) (*entity.Session, error)

	CreateOTP(ctx context.Context, in entity.OTP) error
	CreateUser(ctx context.Context, in entity.User) error
	CreateSession(ctx context.Context, in entity.Session) error

	MarkOTPUsed(ctx context.Context, id int64) error
	UpdateUserRole(ctx context.Context, id int64, role entity.Role) error

	DeleteSession(ctx context.Context, token string) error
}

type Usecase struct {
	repoDB     repoDB
	mailer     mail.Mail
	validator  validator.Validator
	cfg        config.Config
	credential *credential.Generator
	uid        uid.NumberID
	clock      clock.Clocker
	ins        instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Mailer     mail.Mail
	Validator  validator.Validator
	Config     config.Config
	Credential *credential.Generator
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:     dep.RepoDB,
		mailer:     dep.Mailer,
		validator:  dep.Validator,
		cfg:        dep.Config,
		credential: dep.Credential,
		uid:        dep.UID,
		clock:      dep.Clock,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// normalizeEmail is applied to every email before storage or lookup, so the
// same address always maps to the same user and OTP rows.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Usecase) isConfiguredAdmin(email string) bool {
	for _, admin := range s.cfg.GetArray("modules.identity.admin_emails") {
		if normalizeEmail(admin) == email {
			return true
		}
	}

	return false
}
