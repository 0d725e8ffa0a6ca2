package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
)

type SendRemindersOutput struct {
	RemindersSent int
}

// SendReminders emails every non-admin user who has not yet filed a report
// for the current month. Meant to be triggered by an admin or a scheduler.
// Individual delivery failures are logged and skipped so one bad address
// cannot block the rest of the batch.
func (s *Usecase) SendReminders(ctx context.Context) (*SendRemindersOutput, error) {
	ctx, span := s.startSpan(ctx, "SendReminders")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	monthKey := now.Format("2006-01")
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	emails, err := s.repoDB.ListUserEmailsMissingReport(ctx, firstOfMonth)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users missing report", "month", monthKey, "error", err)
		return nil, goerror.NewDependency(err)
	}

	sent := 0
	for _, email := range emails {
		err := s.mailer.Send(ctx, mail.Message{
			To:      []string{email},
			Subject: "Monthly Report Reminder - " + monthKey,
			TextBody: fmt.Sprintf(
				"Hello,\n\n"+
					"This is a reminder that you haven't submitted your monthly report for %s yet.\n\n"+
					"Please log in to your dashboard and submit your report as soon as possible.\n\n"+
					"Thank you!\n",
				monthKey,
			),
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to send report reminder", "email", email, "error", err)
			continue
		}
		sent++
	}

	return &SendRemindersOutput{RemindersSent: sent}, nil
}
