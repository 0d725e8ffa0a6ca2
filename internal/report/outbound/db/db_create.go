package db

import (
	"context"

	"github.com/promonhq/promon/internal/report/entity"
)

func (s *DB) CreateReport(ctx context.Context, in entity.MonthlyReport) (err error) {
	ctx, span, cancel := s.startSpan(ctx, "CreateReport")
	defer cancel()
	defer func() { s.endSpan(span, err) }()

	const query = `INSERT INTO monthly_reports (
			id, programme_name, submitted_by, focal_department, focal_aide_hm,
			focal_ministry_official, reporting_month, programme_launch_date,
			total_youth_registered, youth_trained, youth_funded, youth_with_outcomes,
			partnerships, challenges, mitigation_strategies, scale_up_plans, success_story,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.ProgrammeName, in.SubmittedBy, in.FocalDepartment, in.FocalAideHM,
		in.FocalMinistryOfficial, in.ReportingMonth, in.ProgrammeLaunchDate,
		in.TotalYouthRegistered, in.YouthTrained, in.YouthFunded, in.YouthWithOutcomes,
		in.Partnerships, in.Challenges, in.MitigationStrategies, in.ScaleUpPlans, in.SuccessStory,
		in.CreatedAt,
	)
	if err != nil {
		return s.mapError(err)
	}

	return nil
}
