package report

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
	"github.com/promonhq/promon/internal/report/inbound"
	"github.com/promonhq/promon/internal/report/outbound/db"
	"github.com/promonhq/promon/internal/report/usecase"
)

// Authz resolves the caller's session. It is satisfied by the identity
// module's usecase.
type Authz interface {
	ResolveSession(ctx context.Context) (*session.User, error)
	RequireAdmin(ctx context.Context) (*session.User, error)
}

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Authz      Authz                      `validate:"required"`
	Mailer     mail.Mail                  `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbReport := db.NewDB(dep.DBConn, dep.Instrument, dep.Config.GetSecond("database.timeout_seconds"))
	if err := dbReport.Migrate(ctx); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbReport,
		Authz:      dep.Authz,
		Mailer:     dep.Mailer,
		Validator:  dep.Validator,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
