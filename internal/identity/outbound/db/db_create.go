package db

import (
	"context"

	"github.com/promonhq/promon/internal/identity/entity"
)

func (s *DB) CreateOTP(ctx context.Context, in entity.OTP) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateOTP")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO otps (id, email, code, expires_at) VALUES ($1, $2, $3, $4)`

	_, err = s.conn.Exec(ctx, query, in.ID, in.Email, in.Code, in.ExpiresAt)

	return s.mapError(err)
}

func (s *DB) CreateUser(ctx context.Context, in entity.User) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateUser")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO users (id, email, role) VALUES ($1, $2, $3)`

	_, err = s.conn.Exec(ctx, query, in.ID, in.Email, in.Role.Ensure())

	return s.mapError(err)
}

func (s *DB) CreateSession(ctx context.Context, in entity.Session) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateSession")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`

	_, err = s.conn.Exec(ctx, query, in.Token, in.UserID, in.ExpiresAt)

	return s.mapError(err)
}
