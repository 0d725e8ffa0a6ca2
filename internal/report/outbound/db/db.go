package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/instrument"
)

type DB struct {
	conn    *pgxpool.Pool
	ins     instrument.Instrumentation
	timeout time.Duration
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, timeout time.Duration) *DB {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &DB{conn: conn, ins: ins, timeout: timeout}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return goerror.ErrTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span, context.CancelFunc) {
	ctx, span := s.ins.Tracer("report.outbound.db").Start(ctx, name)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	return ctx, span, cancel
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Migrate creates the monthly report table when it does not exist yet. The
// submitted_by reference is nullable so reports outlive their author.
func (s *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS monthly_reports (
			id                      BIGINT PRIMARY KEY,
			programme_name          TEXT NOT NULL,
			submitted_by            BIGINT REFERENCES users (id) ON DELETE SET NULL,
			focal_department        TEXT NOT NULL DEFAULT '',
			focal_aide_hm           TEXT NOT NULL DEFAULT '',
			focal_ministry_official TEXT NOT NULL DEFAULT '',
			reporting_month         DATE NOT NULL,
			programme_launch_date   DATE,
			total_youth_registered  INTEGER NOT NULL DEFAULT 0,
			youth_trained           INTEGER NOT NULL DEFAULT 0,
			youth_funded            INTEGER NOT NULL DEFAULT 0,
			youth_with_outcomes     INTEGER NOT NULL DEFAULT 0,
			partnerships            TEXT NOT NULL DEFAULT '',
			challenges              TEXT NOT NULL DEFAULT '',
			mitigation_strategies   TEXT NOT NULL DEFAULT '',
			scale_up_plans          TEXT NOT NULL DEFAULT '',
			success_story           TEXT NOT NULL DEFAULT '',
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_monthly_reports_submitted_by
			ON monthly_reports (submitted_by, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
