package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/validator"
	"github.com/promonhq/promon/internal/report/entity"
)

var testNow = time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC)

type fakeUser struct {
	id    int64
	email string
	admin bool
}

type fakeRepo struct {
	mu          sync.Mutex
	reports     map[int64]*entity.MonthlyReport
	users       []fakeUser
	adminEmails []string
	createErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reports: make(map[int64]*entity.MonthlyReport)}
}

func (f *fakeRepo) ListReports(context.Context) ([]entity.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.MonthlyReport, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, *r)
	}

	return out, nil
}

func (f *fakeRepo) ListReportsByUser(_ context.Context, userID int64) ([]entity.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.MonthlyReport
	for _, r := range f.reports {
		if r.SubmittedBy == userID {
			out = append(out, *r)
		}
	}

	return out, nil
}

func (f *fakeRepo) GetDashboardTotals(context.Context) (*entity.DashboardTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var totals entity.DashboardTotals
	for _, r := range f.reports {
		totals.TotalYouthRegistered += int64(r.TotalYouthRegistered)
		totals.TotalTrained += int64(r.YouthTrained)
		totals.TotalYouthFunded += int64(r.YouthFunded)
		totals.TotalYouthWithOutcomes += int64(r.YouthWithOutcomes)
		totals.TotalReports++
	}

	return &totals, nil
}

func (f *fakeRepo) GetAdminEmails(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string{}, f.adminEmails...), nil
}

func (f *fakeRepo) ListUserEmailsMissingReport(_ context.Context, month time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var emails []string
	for _, u := range f.users {
		if u.admin {
			continue
		}

		missing := true
		for _, r := range f.reports {
			if r.SubmittedBy == u.id && r.ReportingMonth.Equal(month) {
				missing = false
				break
			}
		}
		if missing {
			emails = append(emails, u.email)
		}
	}

	sort.Strings(emails)
	return emails, nil
}

func (f *fakeRepo) ListRecentReportsWithChallenges(_ context.Context, since time.Time) ([]entity.MonthlyReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.MonthlyReport
	for _, r := range f.reports {
		if r.Challenges != "" && !r.CreatedAt.Before(since) {
			out = append(out, *r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) CreateReport(_ context.Context, in entity.MonthlyReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}

	cp := in
	f.reports[in.ID] = &cp
	return nil
}

type fakeAuthz struct {
	user *session.User
	err  error
}

func (f *fakeAuthz) ResolveSession(context.Context) (*session.User, error) {
	return f.user, f.err
}

func (f *fakeAuthz) RequireAdmin(context.Context) (*session.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.user.IsAdmin() {
		return nil, goerror.NewBusiness("Admin access required", goerror.CodeForbidden)
	}

	return f.user, nil
}

func adminAuthz() *fakeAuthz {
	return &fakeAuthz{user: &session.User{ID: 1, Email: "admin@example.com", Role: session.RoleAdmin}}
}

func userAuthz(id int64) *fakeAuthz {
	return &fakeAuthz{user: &session.User{ID: id, Email: "user@example.com", Role: session.RoleUser}}
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mail.Message
	err    error
	failTo string
	done   chan struct{}
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for _, to := range msg.To {
		if f.failTo != "" && to == f.failTo {
			return assert.AnError
		}
	}

	f.sent = append(f.sent, msg)
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return nil
}

func (f *fakeMailer) Close() error { return nil }

type seqID struct {
	mu sync.Mutex
	n  int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	return s.n
}

type testEnv struct {
	uc     *Usecase
	repo   *fakeRepo
	mailer *fakeMailer
}

func newTestEnv(t *testing.T, az *fakeAuthz) *testEnv {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	repo := newFakeRepo()
	mailer := &fakeMailer{}

	uc := New(Dependency{
		RepoDB:     repo,
		Authz:      az,
		Mailer:     mailer,
		Validator:  v,
		UID:        &seqID{},
		Clock:      clock.NewFixed(testNow),
		Instrument: instrument.NewNoop(),
		Goroutine:  goroutine.NewManager(4),
	})

	return &testEnv{uc: uc, repo: repo, mailer: mailer}
}

func validInput() SubmitReportInput {
	return SubmitReportInput{
		ProgrammeName:        "Digital Literacy",
		FocalDepartment:      "ICT",
		ReportingMonth:       "2025-06",
		ProgrammeLaunchDate:  "2024-03-01",
		TotalYouthRegistered: 300,
		YouthTrained:         120,
		YouthFunded:          40,
		YouthWithOutcomes:    25,
		Partnerships:         "Two training centres",
		SuccessStory:         "First cohort graduated",
	}
}

func TestSubmitReport(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))
	env.repo.adminEmails = []string{"admin@example.com"}
	env.mailer.done = make(chan struct{})

	out, err := env.uc.SubmitReport(t.Context(), validInput())
	require.NoError(t, err)

	report, ok := env.repo.reports[out.ReportID]
	require.True(t, ok)
	assert.Equal(t, int64(7), report.SubmittedBy)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), report.ReportingMonth)
	require.NotNil(t, report.ProgrammeLaunchDate)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), *report.ProgrammeLaunchDate)
	assert.Equal(t, testNow, report.CreatedAt)

	select {
	case <-env.mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("admin notification was never sent")
	}

	env.mailer.mu.Lock()
	defer env.mailer.mu.Unlock()
	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "Digital Literacy")
	assert.Contains(t, msg.TextBody, "June 2025")
}

func TestSubmitReport_RequiresSession(t *testing.T) {
	env := newTestEnv(t,
		&fakeAuthz{err: goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)})

	_, err := env.uc.SubmitReport(t.Context(), validInput())
	assert.Error(t, err)
	assert.Empty(t, env.repo.reports)
}

func TestSubmitReport_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmitReportInput)
	}{
		{"missing programme name", func(in *SubmitReportInput) { in.ProgrammeName = "" }},
		{"missing department", func(in *SubmitReportInput) { in.FocalDepartment = "" }},
		{"month not YYYY-MM", func(in *SubmitReportInput) { in.ReportingMonth = "June 2025" }},
		{"month out of range", func(in *SubmitReportInput) { in.ReportingMonth = "2025-13" }},
		{"bad launch date", func(in *SubmitReportInput) { in.ProgrammeLaunchDate = "yesterday" }},
		{"negative count", func(in *SubmitReportInput) { in.YouthTrained = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, userAuthz(7))

			in := validInput()
			tc.mutate(&in)

			_, err := env.uc.SubmitReport(t.Context(), in)
			assert.Error(t, err)
			assert.Empty(t, env.repo.reports)
		})
	}
}

func TestSubmitReport_NoLaunchDate(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))

	in := validInput()
	in.ProgrammeLaunchDate = ""

	out, err := env.uc.SubmitReport(t.Context(), in)
	require.NoError(t, err)
	assert.Nil(t, env.repo.reports[out.ReportID].ProgrammeLaunchDate)
}

func TestSubmitReport_SucceedsWhenNotificationFails(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))
	env.repo.adminEmails = []string{"admin@example.com"}
	env.mailer.err = assert.AnError

	_, err := env.uc.SubmitReport(t.Context(), validInput())
	require.NoError(t, err)
	assert.Len(t, env.repo.reports, 1)
}

func TestListReports_UserSeesOnlyOwn(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))
	env.repo.reports[1] = &entity.MonthlyReport{ID: 1, SubmittedBy: 7}
	env.repo.reports[2] = &entity.MonthlyReport{ID: 2, SubmittedBy: 8}

	reports, err := env.uc.ListReports(t.Context())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int64(1), reports[0].ID)
}

func TestListReports_AdminSeesAll(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.reports[1] = &entity.MonthlyReport{ID: 1, SubmittedBy: 7}
	env.repo.reports[2] = &entity.MonthlyReport{ID: 2, SubmittedBy: 8}

	reports, err := env.uc.ListReports(t.Context())
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.reports[1] = &entity.MonthlyReport{ID: 1, TotalYouthRegistered: 200, YouthTrained: 60, YouthFunded: 10, YouthWithOutcomes: 5}
	env.repo.reports[2] = &entity.MonthlyReport{ID: 2, TotalYouthRegistered: 100, YouthTrained: 40, YouthFunded: 20, YouthWithOutcomes: 15}

	out, err := env.uc.Dashboard(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(300), out.TotalYouthRegistered)
	assert.Equal(t, int64(100), out.TotalTrained)
	assert.Equal(t, int64(30), out.TotalYouthFunded)
	assert.Equal(t, int64(20), out.TotalYouthWithOutcomes)
	assert.Equal(t, int64(2), out.TotalReports)
	assert.InDelta(t, 33.33, out.TrainingPercentage, 0.001)
}

func TestDashboard_ZeroRegistered(t *testing.T) {
	env := newTestEnv(t, adminAuthz())

	out, err := env.uc.Dashboard(t.Context())
	require.NoError(t, err)
	assert.Zero(t, out.TrainingPercentage)
}

func TestDashboard_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))

	_, err := env.uc.Dashboard(t.Context())
	assert.Error(t, err)
}

func TestSendReminders(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.users = []fakeUser{
		{id: 7, email: "alice@example.com"},
		{id: 8, email: "bob@example.com"},
		{id: 1, email: "admin@example.com", admin: true},
	}
	// Alice already filed for July 2025; only Bob gets a reminder.
	env.repo.reports[1] = &entity.MonthlyReport{
		ID:             1,
		SubmittedBy:    7,
		ReportingMonth: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
	}

	out, err := env.uc.SendReminders(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, out.RemindersSent)

	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, []string{"bob@example.com"}, msg.To)
	assert.Equal(t, "Monthly Report Reminder - 2025-07", msg.Subject)
	assert.Contains(t, msg.TextBody, "2025-07")
}

func TestSendReminders_SkipsFailedDelivery(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.users = []fakeUser{
		{id: 7, email: "alice@example.com"},
		{id: 8, email: "bob@example.com"},
	}
	env.mailer.failTo = "alice@example.com"

	out, err := env.uc.SendReminders(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, out.RemindersSent)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, []string{"bob@example.com"}, env.mailer.sent[0].To)
}

func TestSendReminders_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))
	env.repo.users = []fakeUser{{id: 8, email: "bob@example.com"}}

	_, err := env.uc.SendReminders(t.Context())
	assert.Error(t, err)
	assert.Empty(t, env.mailer.sent)
}

func TestNotifyChallenges(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.adminEmails = []string{"admin1@example.com", "admin2@example.com"}

	longChallenges := strings.Repeat("delayed procurement and ", 10)
	env.repo.reports[1] = &entity.MonthlyReport{
		ID:            1,
		ProgrammeName: "Digital Literacy",
		Challenges:    longChallenges,
		CreatedAt:     testNow.Add(-24 * time.Hour),
	}
	// No challenges narrative, never reported.
	env.repo.reports[2] = &entity.MonthlyReport{
		ID:            2,
		ProgrammeName: "Agri Youth",
		CreatedAt:     testNow.Add(-24 * time.Hour),
	}
	// Challenges, but older than a week.
	env.repo.reports[3] = &entity.MonthlyReport{
		ID:            3,
		ProgrammeName: "Craft Fund",
		Challenges:    "funding gap",
		CreatedAt:     testNow.Add(-8 * 24 * time.Hour),
	}

	out, err := env.uc.NotifyChallenges(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, out.NotificationsSent)

	require.Len(t, env.mailer.sent, 2)
	msg := env.mailer.sent[0]
	assert.Equal(t, "Alert: 1 reports with challenges submitted", msg.Subject)
	assert.Contains(t, msg.TextBody, "- Digital Literacy: "+longChallenges[:100]+"...")
	assert.NotContains(t, msg.TextBody, longChallenges)
	assert.NotContains(t, msg.TextBody, "Agri Youth")
	assert.NotContains(t, msg.TextBody, "Craft Fund")
}

func TestNotifyChallenges_NoRecentChallenges(t *testing.T) {
	env := newTestEnv(t, adminAuthz())
	env.repo.adminEmails = []string{"admin@example.com"}

	out, err := env.uc.NotifyChallenges(t.Context())
	require.NoError(t, err)
	assert.Zero(t, out.NotificationsSent)
	assert.Empty(t, env.mailer.sent)
}

func TestNotifyChallenges_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, userAuthz(7))
	env.repo.adminEmails = []string{"admin@example.com"}
	env.repo.reports[1] = &entity.MonthlyReport{ID: 1, Challenges: "x", CreatedAt: testNow}

	_, err := env.uc.NotifyChallenges(t.Context())
	assert.Error(t, err)
	assert.Empty(t, env.mailer.sent)
}
