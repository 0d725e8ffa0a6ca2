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
	ctx, span := s.ins.Tracer("identity.outbound.db").Start(ctx, name)
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

// Migrate creates the identity tables when they do not exist yet.
func (s *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         BIGINT PRIMARY KEY,
			email      TEXT NOT NULL UNIQUE,
			role       TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS otps (
			id         BIGINT PRIMARY KEY,
			email      TEXT NOT NULL,
			code       TEXT NOT NULL,
			used       BOOLEAN NOT NULL DEFAULT FALSE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_otps_email_code ON otps (email, code, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users (id),
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
