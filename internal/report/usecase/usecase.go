package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
	"github.com/promonhq/promon/internal/report/entity"
)

// authz is the slice of the identity module this module relies on.
type authz interface {
	ResolveSession(ctx context.Context) (*session.User, error)
	RequireAdmin(ctx context.Context) (*session.User, error)
}

type repoDB interface {
	ListReports(ctx context.Context) ([]entity.MonthlyReport, error)
	ListReportsByUser(ctx context.Context, userID int64) ([]entity.MonthlyReport, error)
	GetDashboardTotals(ctx context.Context) (*entity.DashboardTotals, error)
	GetAdminEmails(ctx context.Context) ([]string, error)
	ListUserEmailsMissingReport(ctx context.Context, month time.Time) ([]string, error)
	ListRecentReportsWithChallenges(ctx context.Context, since time.Time) ([]entity.MonthlyReport, error)

	CreateReport(ctx context.Context, in entity.MonthlyReport) error
}

type Usecase struct {
	repoDB    repoDB
	authz     authz
	mailer    mail.Mail
	validator validator.Validator
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
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("report.usecase").Start(ctx, name)
}
