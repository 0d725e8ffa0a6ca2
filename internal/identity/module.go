package identity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promonhq/promon/internal/identity/inbound"
	"github.com/promonhq/promon/internal/identity/outbound/db"
	"github.com/promonhq/promon/internal/identity/usecase"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/credential"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mailer     mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Credential *credential.Generator      `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the identity module and returns its usecase so other modules can
// use it to resolve sessions.
func New(ctx context.Context, dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbIdentity := db.NewDB(dep.DBConn, dep.Instrument, dep.Config.GetSecond("database.timeout_seconds"))
	if err := dbIdentity.Migrate(ctx); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbIdentity,
		Mailer:     dep.Mailer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Credential: dep.Credential,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return uc, nil
}
