package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
)

// authz is the slice of the identity module this module relies on.
type authz interface {
	ResolveSession(ctx context.Context) (*session.User, error)
	RequireAdmin(ctx context.Context) (*session.User, error)
}

type repoDB interface {
	GetProgramme(ctx context.Context, id int64) (*entity.Programme, error)
	ListProgrammes(ctx context.Context) ([]entity.Programme, error)
	GetFormToken(ctx context.Context, tokenHash string) (*entity.FormToken, error)
	GetSubmissionStats(ctx context.Context) ([]entity.ProgrammeSummary, error)
	ListSubmissions(ctx context.Context, programmeID int64, limit, offset int32) ([]entity.FormSubmission, error)

	CreateFormToken(ctx context.Context, in entity.FormToken) error

	// CreateSubmission stores a submission and, when consumeTokenHash is
	// non-empty, atomically marks that token used in the same transaction.
	// It fails with goerror.ErrConflict when the token was consumed first.
	CreateSubmission(ctx context.Context, in entity.FormSubmission, consumeTokenHash string) error

	UpdateProgrammeRecipient(ctx context.Context, id int64, email string) error
}

type Usecase struct {
	repoDB    repoDB
	authz     authz
	mailer    mail.Mail
	validator validator.Validator
	cfg       config.Config
	codec     *formtoken.Codec
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
}

type Dependency struct {
	RepoDB     repoDB
	Authz      authz
	Mailer     mail.Mail
	Validator  validator.Validator
	Config     config.Config
	Codec      *formtoken.Codec
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		authz:     dep.Authz,
		mailer:    dep.Mailer,
		validator: dep.Validator,
		cfg:       dep.Config,
		codec:     dep.Codec,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("programme.usecase").Start(ctx, name)
}

func (s *Usecase) oneTimeTokens() bool {
	return s.cfg.GetBool("modules.programme.form_token_one_time")
}
