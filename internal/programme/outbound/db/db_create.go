package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

func (s *DB) CreateFormToken(ctx context.Context, in entity.FormToken) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateFormToken")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO form_tokens (token_hash, programme_id, recipient_email, expires_at)
		VALUES ($1, $2, $3, $4)`

	_, err = s.conn.Exec(ctx, query, in.TokenHash, in.ProgrammeID, in.RecipientEmail, in.ExpiresAt)

	return s.mapError(err)
}

// CreateSubmission stores the submission and consumes the token in one
// transaction. The consume step is a compare-and-set on used=FALSE; zero
// affected rows means another submission won, so the whole transaction rolls
// back and ErrConflict is returned.
func (s *DB) CreateSubmission(ctx context.Context, in entity.FormSubmission, consumeTokenHash string) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateSubmission")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		const insert = `INSERT INTO form_submissions (id, programme_id, recipient_email, form_data, submitted_at)
			VALUES ($1, $2, $3, $4, $5)`

		if _, err := tx.Exec(ctx, insert,
			in.ID, in.ProgrammeID, in.RecipientEmail, in.FormData, in.SubmittedAt); err != nil {
			return err
		}

		if consumeTokenHash == "" {
			return nil
		}

		const consume = `UPDATE form_tokens SET used = TRUE WHERE token_hash = $1 AND used = FALSE`

		tag, err := tx.Exec(ctx, consume, consumeTokenHash)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return goerror.ErrConflict
		}

		return nil
	})

	return s.mapError(err)
}
