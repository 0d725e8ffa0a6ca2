package db

import (
	"context"

	"github.com/promonhq/promon/internal/programme/entity"
)

func (s *DB) GetProgramme(ctx context.Context, id int64) (_ *entity.Programme, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetProgramme")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, name, department, recipient_email, created_at
		FROM programmes WHERE id = $1`

	var p entity.Programme
	err = s.conn.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Department, &p.RecipientEmail, &p.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &p, nil
}

func (s *DB) ListProgrammes(ctx context.Context) (_ []entity.Programme, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListProgrammes")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, name, department, recipient_email, created_at
		FROM programmes ORDER BY name`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var programmes []entity.Programme
	for rows.Next() {
		var p entity.Programme
		if err = rows.Scan(&p.ID, &p.Name, &p.Department, &p.RecipientEmail, &p.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		programmes = append(programmes, p)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return programmes, nil
}

func (s *DB) GetFormToken(ctx context.Context, tokenHash string) (_ *entity.FormToken, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetFormToken")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT token_hash, programme_id, recipient_email, used, expires_at, created_at
		FROM form_tokens WHERE token_hash = $1`

	var ft entity.FormToken
	err = s.conn.QueryRow(ctx, query, tokenHash).
		Scan(&ft.TokenHash, &ft.ProgrammeID, &ft.RecipientEmail, &ft.Used, &ft.ExpiresAt, &ft.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ft, nil
}

func (s *DB) GetSubmissionStats(ctx context.Context) (_ []entity.ProgrammeSummary, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetSubmissionStats")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT programme_id, COUNT(*), MAX(submitted_at)
		FROM form_submissions GROUP BY programme_id`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var stats []entity.ProgrammeSummary
	for rows.Next() {
		var stat entity.ProgrammeSummary
		if err = rows.Scan(&stat.ProgrammeID, &stat.SubmissionCount, &stat.LastSubmittedAt); err != nil {
			return nil, s.mapError(err)
		}
		stats = append(stats, stat)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return stats, nil
}

func (s *DB) ListSubmissions(ctx context.Context, programmeID int64, limit, offset int32) (_ []entity.FormSubmission, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListSubmissions")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT id, programme_id, recipient_email, form_data, submitted_at
		FROM form_submissions
		WHERE ($1 = 0 OR programme_id = $1)
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.conn.Query(ctx, query, programmeID, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var submissions []entity.FormSubmission
	for rows.Next() {
		var sub entity.FormSubmission
		if err = rows.Scan(&sub.ID, &sub.ProgrammeID, &sub.RecipientEmail, &sub.FormData, &sub.SubmittedAt); err != nil {
			return nil, s.mapError(err)
		}
		submissions = append(submissions, sub)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return submissions, nil
}
