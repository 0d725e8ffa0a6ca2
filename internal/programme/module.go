package programme

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promonhq/promon/internal/programme/inbound"
	"github.com/promonhq/promon/internal/programme/outbound/db"
	"github.com/promonhq/promon/internal/programme/usecase"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
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
	Codec      *formtoken.Codec           `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(ctx context.Context, dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbProgramme := db.NewDB(dep.DBConn, dep.Instrument, dep.Config.GetSecond("database.timeout_seconds"))
	if err := dbProgramme.Migrate(ctx); err != nil {
		return err
	}
	if err := dbProgramme.Seed(ctx, dep.UID, db.DefaultSeedProgrammes); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbProgramme,
		Authz:      dep.Authz,
		Mailer:     dep.Mailer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Codec:      dep.Codec,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
