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
	"github.com/promonhq/promon/internal/pkg/uid"
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
	ctx, span := s.ins.Tracer("programme.outbound.db").Start(ctx, name)
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

// Migrate creates the programme tables when they do not exist yet.
func (s *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS programmes (
			id              BIGINT PRIMARY KEY,
			name            TEXT NOT NULL UNIQUE,
			department      TEXT NOT NULL DEFAULT '',
			recipient_email TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS form_tokens (
			token_hash      TEXT PRIMARY KEY,
			programme_id    BIGINT NOT NULL REFERENCES programmes (id),
			recipient_email TEXT NOT NULL,
			used            BOOLEAN NOT NULL DEFAULT FALSE,
			expires_at      TIMESTAMPTZ NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS form_submissions (
			id              BIGINT PRIMARY KEY,
			programme_id    BIGINT NOT NULL REFERENCES programmes (id),
			recipient_email TEXT NOT NULL,
			form_data       JSONB NOT NULL DEFAULT '{}'::jsonb,
			submitted_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_form_submissions_programme
			ON form_submissions (programme_id, submitted_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// SeedProgramme is a programme inserted at startup when it does not exist.
type SeedProgramme struct {
	Name       string
	Department string
}

// DefaultSeedProgrammes are the programmes every fresh deployment starts with.
var DefaultSeedProgrammes = []SeedProgramme{
	{Name: "Youth Skills Accelerator", Department: "Education"},
	{Name: "Entrepreneurship Incubator", Department: "Commerce"},
	{Name: "Digital Literacy", Department: "ICT"},
}

// Seed inserts the given programmes, skipping any whose name already exists.
func (s *DB) Seed(ctx context.Context, id uid.NumberID, seeds []SeedProgramme) error {
	const query = `INSERT INTO programmes (id, name, department)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`

	for _, seed := range seeds {
		if _, err := s.conn.Exec(ctx, query, id.Generate(), seed.Name, seed.Department); err != nil {
			return err
		}
	}

	return nil
}
