package db

import (
	"context"

	"github.com/promonhq/promon/internal/identity/entity"
	"github.com/promonhq/promon/internal/pkg/goerror"
)

func (s *DB) MarkOTPUsed(ctx context.Context, id int64) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "MarkOTPUsed")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE otps SET used = TRUE WHERE id = $1`

	tag, err := s.conn.Exec(ctx, query, id)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}

func (s *DB) UpdateUserRole(ctx context.Context, id int64, role entity.Role) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "UpdateUserRole")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE users SET role = $2 WHERE id = $1`

	tag, err := s.conn.Exec(ctx, query, id, role.Ensure())
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
