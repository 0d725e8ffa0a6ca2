package app

import (
	"log/slog"
	"os"

	"github.com/promonhq/promon/internal/identity"
	"github.com/promonhq/promon/internal/programme"
	"github.com/promonhq/promon/internal/report"
)

func (a *App) initModules() {
	// Identity is always on: every other module resolves sessions through it.
	identityUC, err := identity.New(a.ctx, identity.Dependency{
		DBConn:     a.dbConn,
		Router:     a.router,
		Mailer:     a.mail,
		Config:     a.config,
		Instrument: a.ins,
		Credential: a.credential,
		UID:        a.uid,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module identity", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.programme.enabled") {
		if err := programme.New(a.ctx, programme.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Authz:      identityUC,
			Mailer:     a.mail,
			Goroutine:  a.goroutine,
			Config:     a.config,
			Instrument: a.ins,
			Codec:      a.formtoken,
			UID:        a.uid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module programme", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.report.enabled") {
		if err := report.New(a.ctx, report.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Authz:      identityUC,
			Mailer:     a.mail,
			Goroutine:  a.goroutine,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module report", "error", err)
			os.Exit(1)
		}
	}
}
