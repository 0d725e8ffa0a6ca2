package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/formtoken"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/goroutine"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/validator"
	"github.com/promonhq/promon/internal/pkg/valueobject"
)

var testNow = time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)

const testConfigYAML = `
modules:
  programme:
    form_token_ttl_hours: 72
    form_token_one_time: true
    base_url: https://promon.example.org
    admin_email: admin@example.com
`

type fakeRepo struct {
	mu          sync.Mutex
	programmes  map[int64]*entity.Programme
	tokens      map[string]*entity.FormToken
	submissions map[int64]*entity.FormSubmission
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		programmes:  make(map[int64]*entity.Programme),
		tokens:      make(map[string]*entity.FormToken),
		submissions: make(map[int64]*entity.FormSubmission),
	}
}

func (f *fakeRepo) GetProgramme(_ context.Context, id int64) (*entity.Programme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.programmes[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := *p
	return &cp, nil
}

func (f *fakeRepo) ListProgrammes(_ context.Context) ([]entity.Programme, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]entity.Programme, 0, len(f.programmes))
	for _, p := range f.programmes {
		out = append(out, *p)
	}

	return out, nil
}

func (f *fakeRepo) GetFormToken(_ context.Context, tokenHash string) (*entity.FormToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ft, ok := f.tokens[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := *ft
	return &cp, nil
}

func (f *fakeRepo) GetSubmissionStats(_ context.Context) ([]entity.ProgrammeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	byProgramme := make(map[int64]*entity.ProgrammeSummary)
	for _, sub := range f.submissions {
		stat, ok := byProgramme[sub.ProgrammeID]
		if !ok {
			stat = &entity.ProgrammeSummary{ProgrammeID: sub.ProgrammeID}
			byProgramme[sub.ProgrammeID] = stat
		}
		stat.SubmissionCount++
		if stat.LastSubmittedAt == nil || sub.SubmittedAt.After(*stat.LastSubmittedAt) {
			at := sub.SubmittedAt
			stat.LastSubmittedAt = &at
		}
	}

	out := make([]entity.ProgrammeSummary, 0, len(byProgramme))
	for _, stat := range byProgramme {
		out = append(out, *stat)
	}

	return out, nil
}

func (f *fakeRepo) ListSubmissions(_ context.Context, programmeID int64, limit, offset int32) ([]entity.FormSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.FormSubmission
	for _, sub := range f.submissions {
		if programmeID != 0 && sub.ProgrammeID != programmeID {
			continue
		}
		out = append(out, *sub)
	}

	return out, nil
}

func (f *fakeRepo) CreateFormToken(_ context.Context, in entity.FormToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := in
	f.tokens[in.TokenHash] = &cp
	return nil
}

func (f *fakeRepo) CreateSubmission(_ context.Context, in entity.FormSubmission, consumeTokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if consumeTokenHash != "" {
		ft, ok := f.tokens[consumeTokenHash]
		if !ok || ft.Used {
			return goerror.ErrConflict
		}
		ft.Used = true
	}

	cp := in
	f.submissions[in.ID] = &cp
	return nil
}

func (f *fakeRepo) UpdateProgrammeRecipient(_ context.Context, id int64, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.programmes[id]
	if !ok {
		return goerror.ErrNotFound
	}

	p.RecipientEmail = email
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

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
	done chan struct{}
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
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
	authz  *fakeAuthz
	codec  *formtoken.Codec
}

func newTestEnv(t *testing.T, yaml string, az *fakeAuthz) *testEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	codec, err := formtoken.New("test-secret", clk)
	require.NoError(t, err)

	repo := newFakeRepo()
	mailer := &fakeMailer{}

	uc := New(Dependency{
		RepoDB:     repo,
		Authz:      az,
		Mailer:     mailer,
		Validator:  v,
		Config:     cfg,
		Codec:      codec,
		UID:        &seqID{},
		Clock:      clk,
		Instrument: instrument.NewNoop(),
		Goroutine:  goroutine.NewManager(4),
	})

	return &testEnv{uc: uc, repo: repo, mailer: mailer, authz: az, codec: codec}
}

func seedProgramme(env *testEnv, id int64, name, dept, recipient string) {
	env.repo.programmes[id] = &entity.Programme{
		ID:             id,
		Name:           name,
		Department:     dept,
		RecipientEmail: recipient,
	}
}

func TestListProgrammes_RequiresSession(t *testing.T) {
	env := newTestEnv(t, testConfigYAML,
		&fakeAuthz{err: goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)})

	_, err := env.uc.ListProgrammes(t.Context())
	assert.Error(t, err)
}

func TestCreateFormLink(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")

	out, err := env.uc.CreateFormLink(t.Context(), CreateFormLinkInput{
		ProgrammeID: 42,
		Email:       " Recipient@Example.COM ",
	})
	require.NoError(t, err)

	assert.Equal(t, "recipient@example.com", out.Programme.RecipientEmail)
	assert.Equal(t, "recipient@example.com", env.repo.programmes[42].RecipientEmail)
	assert.Equal(t, testNow.Add(72*time.Hour), out.ExpiresAt)
	assert.True(t, strings.HasPrefix(out.Link, "https://promon.example.org/forms/42?token="), out.Link)

	// The stored record is keyed by the token digest, not the token.
	record, ok := env.repo.tokens[formtoken.Hash(out.Token)]
	require.True(t, ok)
	assert.Equal(t, int64(42), record.ProgrammeID)
	assert.False(t, record.Used)

	payload, err := env.codec.Decode(out.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), payload.Pid)
	assert.Equal(t, "recipient@example.com", payload.Email)
}

func TestCreateFormLink_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, testConfigYAML,
		&fakeAuthz{user: &session.User{ID: 2, Email: "user@example.com", Role: session.RoleUser}})
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")

	_, err := env.uc.CreateFormLink(t.Context(), CreateFormLinkInput{ProgrammeID: 42, Email: "a@example.com"})
	assert.Error(t, err)
}

func TestCreateFormLink_UnknownProgramme(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())

	_, err := env.uc.CreateFormLink(t.Context(), CreateFormLinkInput{ProgrammeID: 7, Email: "a@example.com"})
	assert.Error(t, err)
}

func TestSendFormLink(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")

	out, err := env.uc.SendFormLink(t.Context(), SendFormLinkInput{
		ProgrammeID: 42,
		Email:       "recipient@example.com",
	})
	require.NoError(t, err)

	require.Len(t, env.mailer.sent, 1)
	msg := env.mailer.sent[0]
	assert.Equal(t, []string{"recipient@example.com"}, msg.To)
	assert.Contains(t, msg.TextBody, out.Link)
}

func TestSendFormLink_MailFailure(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	env.mailer.err = assert.AnError
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")

	_, err := env.uc.SendFormLink(t.Context(), SendFormLinkInput{
		ProgrammeID: 42,
		Email:       "recipient@example.com",
	})
	assert.Error(t, err)
}

func issueToken(t *testing.T, env *testEnv, programmeID int64, email string) string {
	t.Helper()

	out, err := env.uc.CreateFormLink(t.Context(), CreateFormLinkInput{
		ProgrammeID: programmeID,
		Email:       email,
	})
	require.NoError(t, err)

	return out.Token
}

func TestValidateFormLink(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	access, err := env.uc.ValidateFormLink(t.Context(), 42, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), access.Programme.ID)
	assert.Equal(t, "recipient@example.com", access.RecipientEmail)
	assert.Equal(t, formtoken.Hash(token), access.TokenHash)
}

func TestValidateFormLink_Failures(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	seedProgramme(env, 43, "Entrepreneurship Incubator", "Commerce", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	tests := []struct {
		name        string
		programmeID int64
		token       string
		sentinel    error
		prepare     func()
	}{
		{
			name:        "tampered token",
			programmeID: 42,
			token:       token[:len(token)-4] + "AAAA",
			sentinel:    entity.ErrBadToken,
		},
		{
			name:        "bound to another programme",
			programmeID: 43,
			token:       token,
			sentinel:    entity.ErrProgrammeMismatch,
		},
		{
			name:        "recipient rebound after issue",
			programmeID: 42,
			token:       token,
			sentinel:    entity.ErrRecipientMismatch,
			prepare: func() {
				env.repo.programmes[42].RecipientEmail = "someone-else@example.com"
			},
		},
		{
			name:        "recipient cleared after issue",
			programmeID: 42,
			token:       token,
			sentinel:    entity.ErrRecipientNotSet,
			prepare: func() {
				env.repo.programmes[42].RecipientEmail = ""
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.prepare != nil {
				tc.prepare()
			}
			t.Cleanup(func() {
				env.repo.programmes[42].RecipientEmail = "recipient@example.com"
			})

			_, err := env.uc.ValidateFormLink(t.Context(), tc.programmeID, tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)

			// The client always sees the same terse message.
			var gerr *goerror.Error
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, "invalid or expired link", gerr.Msg())
		})
	}
}

func TestValidateFormLink_OneTimeRecordChecks(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")
	hash := formtoken.Hash(token)

	t.Run("used record", func(t *testing.T) {
		env.repo.tokens[hash].Used = true
		t.Cleanup(func() { env.repo.tokens[hash].Used = false })

		_, err := env.uc.ValidateFormLink(t.Context(), 42, token)
		assert.ErrorIs(t, err, entity.ErrTokenUsed)
	})

	t.Run("missing record", func(t *testing.T) {
		record := env.repo.tokens[hash]
		delete(env.repo.tokens, hash)
		t.Cleanup(func() { env.repo.tokens[hash] = record })

		_, err := env.uc.ValidateFormLink(t.Context(), 42, token)
		assert.ErrorIs(t, err, entity.ErrTokenUnknown)
	})

	t.Run("record expired before signature", func(t *testing.T) {
		env.repo.tokens[hash].ExpiresAt = testNow.Add(-time.Minute)
		t.Cleanup(func() { env.repo.tokens[hash].ExpiresAt = testNow.Add(72 * time.Hour) })

		_, err := env.uc.ValidateFormLink(t.Context(), 42, token)
		assert.ErrorIs(t, err, entity.ErrTokenRecordExpired)
	})

	t.Run("expired wins over used", func(t *testing.T) {
		env.repo.tokens[hash].Used = true
		env.repo.tokens[hash].ExpiresAt = testNow.Add(-time.Minute)
		t.Cleanup(func() {
			env.repo.tokens[hash].Used = false
			env.repo.tokens[hash].ExpiresAt = testNow.Add(72 * time.Hour)
		})

		_, err := env.uc.ValidateFormLink(t.Context(), 42, token)
		assert.ErrorIs(t, err, entity.ErrTokenRecordExpired)
	})
}

func TestValidateFormLink_ReusableWhenOneTimeOff(t *testing.T) {
	cfgYAML := strings.Replace(testConfigYAML, "form_token_one_time: true", "form_token_one_time: false", 1)
	env := newTestEnv(t, cfgYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	// Even a used record does not block access when one-time is off.
	env.repo.tokens[formtoken.Hash(token)].Used = true

	_, err := env.uc.ValidateFormLink(t.Context(), 42, token)
	assert.NoError(t, err)
}

func TestSubmitForm(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	env.mailer.done = make(chan struct{})

	out, err := env.uc.SubmitForm(t.Context(), SubmitFormInput{
		ProgrammeID:   42,
		Token:         token,
		ProgrammeName: "Digital Literacy",
		FormData:      valueobject.JSONMap{"beneficiaries": 120},
	})
	require.NoError(t, err)

	sub, ok := env.repo.submissions[out.SubmissionID]
	require.True(t, ok)
	assert.Equal(t, int64(42), sub.ProgrammeID)
	assert.Equal(t, "recipient@example.com", sub.RecipientEmail)
	assert.True(t, env.repo.tokens[formtoken.Hash(token)].Used)

	select {
	case <-env.mailer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("admin notification was never sent")
	}

	env.mailer.mu.Lock()
	defer env.mailer.mu.Unlock()
	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, []string{"admin@example.com"}, env.mailer.sent[0].To)
}

func TestSubmitForm_NameMismatch(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	_, err := env.uc.SubmitForm(t.Context(), SubmitFormInput{
		ProgrammeID:   42,
		Token:         token,
		ProgrammeName: "Another Programme",
		FormData:      valueobject.JSONMap{"x": 1},
	})
	assert.ErrorIs(t, err, entity.ErrProgrammeNameMismatch)
	assert.Empty(t, env.repo.submissions)
	assert.False(t, env.repo.tokens[formtoken.Hash(token)].Used)
}

func TestSubmitForm_SecondSubmissionRejected(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	in := SubmitFormInput{
		ProgrammeID:   42,
		Token:         token,
		ProgrammeName: "Digital Literacy",
		FormData:      valueobject.JSONMap{"x": 1},
	}

	_, err := env.uc.SubmitForm(t.Context(), in)
	require.NoError(t, err)

	_, err = env.uc.SubmitForm(t.Context(), in)
	assert.ErrorIs(t, err, entity.ErrTokenUsed)
	assert.Len(t, env.repo.submissions, 1)
}

func TestSubmitForm_ConcurrentConsumesOnce(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 42, "Digital Literacy", "ICT", "")
	token := issueToken(t, env, 42, "recipient@example.com")

	in := SubmitFormInput{
		ProgrammeID:   42,
		Token:         token,
		ProgrammeName: "Digital Literacy",
		FormData:      valueobject.JSONMap{"x": 1},
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uc.SubmitForm(t.Context(), in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, errCount int
	for err := range errs {
		if err == nil {
			okCount++
		} else {
			errCount++
		}
	}

	assert.Equal(t, 1, okCount, "exactly one submission must win the token")
	assert.Equal(t, 1, errCount)
	assert.Len(t, env.repo.submissions, 1)
}

func TestAdminSummary(t *testing.T) {
	env := newTestEnv(t, testConfigYAML, adminAuthz())
	seedProgramme(env, 1, "Youth Skills Accelerator", "Education", "a@example.com")
	seedProgramme(env, 2, "Digital Literacy", "ICT", "b@example.com")

	at := testNow.Add(-time.Hour)
	env.repo.submissions[10] = &entity.FormSubmission{ID: 10, ProgrammeID: 1, SubmittedAt: at}
	env.repo.submissions[11] = &entity.FormSubmission{ID: 11, ProgrammeID: 1, SubmittedAt: testNow}

	summaries, err := env.uc.AdminSummary(t.Context())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := make(map[int64]entity.ProgrammeSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ProgrammeID] = s
	}

	assert.Equal(t, int64(2), byID[1].SubmissionCount)
	require.NotNil(t, byID[1].LastSubmittedAt)
	assert.Equal(t, testNow, *byID[1].LastSubmittedAt)

	// Programmes without submissions still appear, with zero counts.
	assert.Equal(t, int64(0), byID[2].SubmissionCount)
	assert.Nil(t, byID[2].LastSubmittedAt)
}

func TestAdminSubmissions_RequiresAdmin(t *testing.T) {
	env := newTestEnv(t, testConfigYAML,
		&fakeAuthz{user: &session.User{ID: 2, Email: "user@example.com", Role: session.RoleUser}})

	_, err := env.uc.AdminSubmissions(t.Context(), AdminSubmissionsInput{})
	assert.Error(t, err)
}
