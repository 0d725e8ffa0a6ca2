package db

import (
	"context"
	"time"

	"github.com/promonhq/promon/internal/report/entity"
)

const reportColumns = `id, programme_name, submitted_by, focal_department, focal_aide_hm,
	focal_ministry_official, reporting_month, programme_launch_date,
	total_youth_registered, youth_trained, youth_funded, youth_with_outcomes,
	partnerships, challenges, mitigation_strategies, scale_up_plans, success_story,
	created_at`

func scanReport(row interface{ Scan(dest ...any) error }) (entity.MonthlyReport, error) {
	var (
		r           entity.MonthlyReport
		submittedBy *int64
	)

	err := row.Scan(
		&r.ID, &r.ProgrammeName, &submittedBy, &r.FocalDepartment, &r.FocalAideHM,
		&r.FocalMinistryOfficial, &r.ReportingMonth, &r.ProgrammeLaunchDate,
		&r.TotalYouthRegistered, &r.YouthTrained, &r.YouthFunded, &r.YouthWithOutcomes,
		&r.Partnerships, &r.Challenges, &r.MitigationStrategies, &r.ScaleUpPlans, &r.SuccessStory,
		&r.CreatedAt,
	)
	if err != nil {
		return entity.MonthlyReport{}, err
	}

	if submittedBy != nil {
		r.SubmittedBy = *submittedBy
	}

	return r, nil
}

func (s *DB) ListReports(ctx context.Context) (_ []entity.MonthlyReport, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListReports")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + reportColumns + ` FROM monthly_reports ORDER BY created_at DESC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var reports []entity.MonthlyReport
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			err = scanErr
			return nil, s.mapError(err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return reports, nil
}

func (s *DB) ListReportsByUser(ctx context.Context, userID int64) (_ []entity.MonthlyReport, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListReportsByUser")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + reportColumns + ` FROM monthly_reports
		WHERE submitted_by = $1 ORDER BY created_at DESC`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var reports []entity.MonthlyReport
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			err = scanErr
			return nil, s.mapError(err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return reports, nil
}

func (s *DB) GetDashboardTotals(ctx context.Context) (_ *entity.DashboardTotals, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetDashboardTotals")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT
		COALESCE(SUM(total_youth_registered), 0),
		COALESCE(SUM(youth_trained), 0),
		COALESCE(SUM(youth_funded), 0),
		COALESCE(SUM(youth_with_outcomes), 0),
		COUNT(*)
		FROM monthly_reports`

	var totals entity.DashboardTotals
	err = s.conn.QueryRow(ctx, query).Scan(
		&totals.TotalYouthRegistered,
		&totals.TotalTrained,
		&totals.TotalYouthFunded,
		&totals.TotalYouthWithOutcomes,
		&totals.TotalReports,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &totals, nil
}

func (s *DB) GetAdminEmails(ctx context.Context) (_ []string, err error) {
	ctx, span, cancel := s.startSpan(ctx, "GetAdminEmails")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT email FROM users WHERE role = 'admin' ORDER BY email`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			return nil, s.mapError(err)
		}
		emails = append(emails, email)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return emails, nil
}

// ListUserEmailsMissingReport returns non-admin users with no report for the
// given month. The month must already be normalized to its first day.
func (s *DB) ListUserEmailsMissingReport(ctx context.Context, month time.Time) (_ []string, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListUserEmailsMissingReport")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT u.email FROM users u
		WHERE u.role <> 'admin'
		AND NOT EXISTS (
			SELECT 1 FROM monthly_reports r
			WHERE r.submitted_by = u.id AND r.reporting_month = $1
		)
		ORDER BY u.email`

	rows, err := s.conn.Query(ctx, query, month)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err = rows.Scan(&email); err != nil {
			return nil, s.mapError(err)
		}
		emails = append(emails, email)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return emails, nil
}

func (s *DB) ListRecentReportsWithChallenges(ctx context.Context, since time.Time) (_ []entity.MonthlyReport, err error) {
	ctx, span, cancel := s.startSpan(ctx, "ListRecentReportsWithChallenges")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `SELECT ` + reportColumns + ` FROM monthly_reports
		WHERE created_at >= $1 AND challenges <> '' ORDER BY created_at DESC`

	rows, err := s.conn.Query(ctx, query, since)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	var reports []entity.MonthlyReport
	for rows.Next() {
		report, scanErr := scanReport(rows)
		if scanErr != nil {
			err = scanErr
			return nil, s.mapError(err)
		}
		reports = append(reports, report)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return reports, nil
}
