package db

import (
	"context"

	"github.com/promonhq/promon/internal/pkg/goerror"
)

func (s *DB) UpdateProgrammeRecipient(ctx context.Context, id int64, email string) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "UpdateProgrammeRecipient")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE programmes SET recipient_email = $2 WHERE id = $1`

	tag, err := s.conn.Exec(ctx, query, id, email)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
