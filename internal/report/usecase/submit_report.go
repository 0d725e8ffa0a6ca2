package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/report/entity"
)

type SubmitReportInput struct {
	ProgrammeName         string `validate:"required"`
	FocalDepartment       string `validate:"required"`
	FocalAideHM           string
	FocalMinistryOfficial string
	ReportingMonth        string `validate:"required,monthkey"`
	ProgrammeLaunchDate   string `validate:"omitempty,datetime=2006-01-02"`
	TotalYouthRegistered  int32  `validate:"gte=0"`
	YouthTrained          int32  `validate:"gte=0"`
	YouthFunded           int32  `validate:"gte=0"`
	YouthWithOutcomes     int32  `validate:"gte=0"`
	Partnerships          string
	Challenges            string
	MitigationStrategies  string
	ScaleUpPlans          string
	SuccessStory          string
}

type SubmitReportOutput struct {
	ReportID int64
}

// SubmitReport stores a monthly report for the logged-in user and notifies
// every admin by email, best effort.
func (s *Usecase) SubmitReport(ctx context.Context, in SubmitReportInput) (*SubmitReportOutput, error) {
	ctx, span := s.startSpan(ctx, "SubmitReport")
	defer span.End()

	user, err := s.authz.ResolveSession(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// The validator already guarantees both formats, so a parse failure here
	// would be a programming error.
	month, err := time.Parse("2006-01", in.ReportingMonth)
	if err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var launchDate *time.Time
	if in.ProgrammeLaunchDate != "" {
		parsed, err := time.Parse("2006-01-02", in.ProgrammeLaunchDate)
		if err != nil {
			return nil, goerror.NewInvalidInput(err)
		}
		launchDate = &parsed
	}

	report := entity.MonthlyReport{
		ID:                    s.uid.Generate(),
		ProgrammeName:         in.ProgrammeName,
		SubmittedBy:           user.ID,
		FocalDepartment:       in.FocalDepartment,
		FocalAideHM:           in.FocalAideHM,
		FocalMinistryOfficial: in.FocalMinistryOfficial,
		ReportingMonth:        month,
		ProgrammeLaunchDate:   launchDate,
		TotalYouthRegistered:  in.TotalYouthRegistered,
		YouthTrained:          in.YouthTrained,
		YouthFunded:           in.YouthFunded,
		YouthWithOutcomes:     in.YouthWithOutcomes,
		Partnerships:          in.Partnerships,
		Challenges:            in.Challenges,
		MitigationStrategies:  in.MitigationStrategies,
		ScaleUpPlans:          in.ScaleUpPlans,
		SuccessStory:          in.SuccessStory,
		CreatedAt:             s.clock.Now(),
	}

	if err := s.repoDB.CreateReport(ctx, report); err != nil {
		slog.ErrorContext(ctx, "failed to repo create report", "error", err)

		return nil, goerror.NewDependency(err)
	}

	s.notifyAdmins(ctx, report)

	return &SubmitReportOutput{ReportID: report.ID}, nil
}

// notifyAdmins emails every admin about a fresh report. The report is already
// durable, so failures here are only logged.
func (s *Usecase) notifyAdmins(ctx context.Context, report entity.MonthlyReport) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		admins, err := s.repoDB.GetAdminEmails(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to repo get admin emails", "error", err)

			return nil
		}
		if len(admins) == 0 {
			return nil
		}

		err = s.mailer.Send(ctx, mail.Message{
			To:      admins,
			Subject: fmt.Sprintf("New monthly report: %s (%s)", report.ProgrammeName, report.ReportingMonth.Format("2006-01")),
			TextBody: fmt.Sprintf(
				"A new monthly report has been submitted.\n\n"+
					"Programme: %s\nDepartment: %s\nReporting month: %s\n"+
					"Youth registered: %d\nYouth trained: %d\n",
				report.ProgrammeName,
				report.FocalDepartment,
				report.ReportingMonth.Format("January 2006"),
				report.TotalYouthRegistered,
				report.YouthTrained,
			),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to send report notification", "error", err)
		}

		return nil
	})
}
