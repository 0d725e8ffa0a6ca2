package db

import (
	"context"

	"github.com/promonhq/promon/internal/pkg/goerror"
)

func (s *DB) DeleteSession(ctx context.Context, token string) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "DeleteSession")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `DELETE FROM sessions WHERE token = $1`

	tag, err := s.conn.Exec(ctx, query, token)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
