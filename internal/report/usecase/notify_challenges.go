package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/report/entity"
)

type NotifyChallengesOutput struct {
	NotificationsSent int
}

// NotifyChallenges alerts every admin about reports filed in the last week
// that carry a challenges narrative. No qualifying reports means no mail.
func (s *Usecase) NotifyChallenges(ctx context.Context) (*NotifyChallengesOutput, error) {
	ctx, span := s.startSpan(ctx, "NotifyChallenges")
	defer span.End()

	if _, err := s.authz.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	since := s.clock.Now().Add(-7 * 24 * time.Hour)

	reports, err := s.repoDB.ListRecentReportsWithChallenges(ctx, since)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list reports with challenges", "error", err)
		return nil, goerror.NewDependency(err)
	}
	if len(reports) == 0 {
		return &NotifyChallengesOutput{}, nil
	}

	admins, err := s.repoDB.GetAdminEmails(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get admin emails", "error", err)
		return nil, goerror.NewDependency(err)
	}

	subject := fmt.Sprintf("Alert: %d reports with challenges submitted", len(reports))
	body := fmt.Sprintf(
		"Hello Admin,\n\n"+
			"%d reports with challenges have been submitted this week:\n\n%s\n\n"+
			"Please review these reports and provide necessary support.\n\n"+
			"Thank you!\n",
		len(reports), challengesSummary(reports),
	)

	sent := 0
	for _, admin := range admins {
		err := s.mailer.Send(ctx, mail.Message{
			To:       []string{admin},
			Subject:  subject,
			TextBody: body,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to send challenge alert", "email", admin, "error", err)
			continue
		}
		sent++
	}

	return &NotifyChallengesOutput{NotificationsSent: sent}, nil
}

// challengesSummary lists at most five reports, truncating each challenges
// narrative to its first 100 bytes.
func challengesSummary(reports []entity.MonthlyReport) string {
	lines := make([]string, 0, 5)
	for _, r := range reports {
		if len(lines) == 5 {
			break
		}

		challenges := r.Challenges
		if len(challenges) > 100 {
			challenges = challenges[:100]
		}
		lines = append(lines, fmt.Sprintf("- %s: %s...", r.ProgrammeName, challenges))
	}

	return strings.Join(lines, "\n")
}
