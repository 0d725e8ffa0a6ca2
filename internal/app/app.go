package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/credential"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/pkg/uid"
	"github.com/promonhq/promon/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine  *goroutine.Manager
	validator  validator.Validator
	clock      clock.Clocker
	uid        uid.NumberID
	uuid       uid.StringID
	credential *credential.Generator
	formtoken  *formtoken.Codec

	// resources
	dbConn *pgxpool.Pool
	mail   mail.Mail

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initMail()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
