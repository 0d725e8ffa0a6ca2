package db

import (
	"context"

	"github.com/promonhq/promon/internal/identity/entity"
)

func (s *DB) GetLatestOTP(ctx context.Context, email, code string) (_ *entity.OTP, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetLatestOTP")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, email, code, used, expires_at, created_at
		FROM otps
		WHERE email = $1 AND code = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var otp entity.OTP
	err = s.conn.QueryRow(ctx, query, email, code).
		Scan(&otp.ID, &otp.Email, &otp.Code, &otp.Used, &otp.ExpiresAt, &otp.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &otp, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetUserByEmail")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, email, role, created_at FROM users WHERE email = $1`

	var user entity.User
	err = s.conn.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetUserByID")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, email, role, created_at FROM users WHERE id = $1`

	var user entity.User
	err = s.conn.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &user, nil
}

func (s *DB) GetSession(ctx context.Context, token string) (_ *entity.Session, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetSession")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`

	var sess entity.Session
	err = s.conn.QueryRow(ctx, query, token).
		Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &sess, nil
}
