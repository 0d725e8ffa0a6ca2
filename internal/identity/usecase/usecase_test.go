package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promonhq/promon/internal/identity/entity"
	"github.com/promonhq/promon/internal/pkg/clock"
	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/credential"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/mail"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/validator"
)

var testNow = time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)

const testConfigYAML = `
modules:
  identity:
    otp_ttl_minutes: 5
    session_ttl_days: 30
    admin_emails: admin@example.com
`

type fakeRepo struct {
	mu       sync.Mutex
	otps     map[int64]*entity.OTP
	users    map[int64]*entity.User
	sessions map[string]*entity.Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		otps:     make(map[int64]*entity.OTP),
		users:    make(map[int64]*entity.User),
		sessions: make(map[string]*entity.Session),
	}
}

func (f *fakeRepo) GetLatestOTP(_ context.Context, email, code string) (*entity.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var latest *entity.OTP
	for _, otp := range f.otps {
		if otp.Email != email || otp.Code != code {
			continue
		}
		if latest == nil || otp.CreatedAt.After(latest.CreatedAt) ||
			(otp.CreatedAt.Equal(latest.CreatedAt) && otp.ID > latest.ID) {
			latest = otp
		}
	}

	if latest == nil {
		return nil, goerror.ErrNotFound
	}

	cp := *latest
	return &cp, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}

	return nil, goerror.ErrNotFound
}

func (f *fakeRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetSession(_ context.Context, token string) (*entity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[token]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	cp := *s
	return &cp, nil
}

func (f *fakeRepo) CreateOTP(_ context.Context, in entity.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := in
	f.otps[in.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateUser(_ context.Context, in entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == in.Email {
			return goerror.ErrConflict
		}
	}

	cp := in
	f.users[in.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateSession(_ context.Context, in entity.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := in
	f.sessions[in.Token] = &cp
	return nil
}

func (f *fakeRepo) MarkOTPUsed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	otp, ok := f.otps[id]
	if !ok {
		return goerror.ErrNotFound
	}

	otp.Used = true
	return nil
}

func (f *fakeRepo) UpdateUserRole(_ context.Context, id int64, role entity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return goerror.ErrNotFound
	}

	u.Role = role
	return nil
}

func (f *fakeRepo) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.sessions[token]; !ok {
		return goerror.ErrNotFound
	}

	delete(f.sessions, token)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Close() error { return nil }

func (f *fakeMailer) last(t *testing.T) mail.Message {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

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

func newTestUsecase(t *testing.T, repo *fakeRepo, mailer *fakeMailer, clk clock.Clocker) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{
		RepoDB:     repo,
		Mailer:     mailer,
		Validator:  v,
		Config:     cfg,
		Credential: credential.New(clk),
		UID:        &seqID{},
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})
}

func TestRequestOTP(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	uc := newTestUsecase(t, repo, mailer, clock.NewFixed(testNow))

	err := uc.RequestOTP(t.Context(), RequestOTPInput{Email: " Alice@Example.COM "})
	require.NoError(t, err)

	require.Len(t, repo.otps, 1)
	for _, otp := range repo.otps {
		assert.Equal(t, "alice@example.com", otp.Email)
		assert.Len(t, otp.Code, 6)
		assert.Equal(t, testNow.Add(5*time.Minute), otp.ExpiresAt)
		assert.False(t, otp.Used)
	}

	msg := mailer.last(t)
	assert.Equal(t, []string{"alice@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, "login code")
}

func TestRequestOTP_InvalidEmail(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo(), &fakeMailer{}, clock.NewFixed(testNow))

	err := uc.RequestOTP(t.Context(), RequestOTPInput{Email: "not-an-email"})
	assert.Error(t, err)
}

func TestRequestOTP_MailFailure(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{err: assert.AnError}
	uc := newTestUsecase(t, repo, mailer, clock.NewFixed(testNow))

	err := uc.RequestOTP(t.Context(), RequestOTPInput{Email: "alice@example.com"})
	assert.Error(t, err)
}

func seedOTP(repo *fakeRepo, id int64, email, code string, expiresAt, createdAt time.Time) {
	repo.otps[id] = &entity.OTP{
		ID:        id,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
}

func TestVerifyOTP_Success(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "alice@example.com", "123456", testNow.Add(5*time.Minute), testNow)

	out, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "Alice@example.com", Code: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", out.User.Email)
	assert.Equal(t, entity.RoleUser, out.User.Role)
	assert.Len(t, out.SessionToken, 32)
	assert.Equal(t, testNow.Add(30*24*time.Hour), out.ExpiresAt)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), out.CookieMaxAge)

	assert.True(t, repo.otps[100].Used)
	require.Contains(t, repo.sessions, out.SessionToken)
	assert.Equal(t, out.User.ID, repo.sessions[out.SessionToken].UserID)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "alice@example.com", "123456", testNow.Add(5*time.Minute), testNow)

	_, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "alice@example.com", Code: "654321"})
	assert.ErrorIs(t, err, entity.ErrCodeInvalid)
	assert.Empty(t, repo.sessions)
}

func TestVerifyOTP_Expired(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "alice@example.com", "123456", testNow.Add(-time.Minute), testNow.Add(-6*time.Minute))

	_, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "alice@example.com", Code: "123456"})
	assert.ErrorIs(t, err, entity.ErrCodeExpired)
	assert.Empty(t, repo.sessions)
}

func TestVerifyOTP_Replay(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "alice@example.com", "123456", testNow.Add(5*time.Minute), testNow)

	in := VerifyOTPInput{Email: "alice@example.com", Code: "123456"}

	_, err := uc.VerifyOTP(t.Context(), in)
	require.NoError(t, err)

	_, err = uc.VerifyOTP(t.Context(), in)
	assert.ErrorIs(t, err, entity.ErrCodeUsed)
	assert.Len(t, repo.sessions, 1)

	// Every failure mode shares the same outward message.
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "invalid or expired code", gerr.Msg())
}

func TestVerifyOTP_OnlyLatestCodeCounts(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "alice@example.com", "111111", testNow.Add(5*time.Minute), testNow.Add(-time.Minute))
	seedOTP(repo, 101, "alice@example.com", "222222", testNow.Add(5*time.Minute), testNow)

	// Each stored code still matches only itself; issuing a newer code does
	// not invalidate the older row, it just stops being the one selected
	// when both share a code value.
	_, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "alice@example.com", Code: "222222"})
	require.NoError(t, err)
	assert.True(t, repo.otps[101].Used)
	assert.False(t, repo.otps[100].Used)
}

func TestVerifyOTP_AdminPromotion(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	seedOTP(repo, 100, "admin@example.com", "123456", testNow.Add(5*time.Minute), testNow)

	out, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "admin@example.com", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)
	assert.Equal(t, entity.RoleAdmin, repo.users[out.User.ID].Role)
}

func TestVerifyOTP_NeverDemotes(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))

	// The user is already an admin but their email is not configured.
	repo.users[7] = &entity.User{ID: 7, Email: "former@example.com", Role: entity.RoleAdmin}
	seedOTP(repo, 100, "former@example.com", "123456", testNow.Add(5*time.Minute), testNow)

	out, err := uc.VerifyOTP(t.Context(), VerifyOTPInput{Email: "former@example.com", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)
}

func TestLogout(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	repo.sessions["tok"] = &entity.Session{Token: "tok", UserID: 1, ExpiresAt: testNow.Add(time.Hour)}

	ctx := session.SetToken(t.Context(), "tok")
	require.NoError(t, uc.Logout(ctx))
	assert.Empty(t, repo.sessions)

	// Logging out twice is fine; the session is gone either way.
	require.NoError(t, uc.Logout(ctx))
}

func TestLogout_NoToken(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo(), &fakeMailer{}, clock.NewFixed(testNow))

	err := uc.Logout(t.Context())
	require.Error(t, err)

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
}

func TestResolveSession(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	repo.users[1] = &entity.User{ID: 1, Email: "alice@example.com", Role: entity.RoleUser}
	repo.sessions["tok"] = &entity.Session{Token: "tok", UserID: 1, ExpiresAt: testNow.Add(time.Hour)}

	user, err := uc.ResolveSession(session.SetToken(t.Context(), "tok"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsAdmin())
}

func TestResolveSession_NoToken(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo(), &fakeMailer{}, clock.NewFixed(testNow))

	_, err := uc.ResolveSession(t.Context())
	assert.Error(t, err)
}

func TestResolveSession_UnknownToken(t *testing.T) {
	uc := newTestUsecase(t, newFakeRepo(), &fakeMailer{}, clock.NewFixed(testNow))

	_, err := uc.ResolveSession(session.SetToken(t.Context(), "nope"))
	assert.Error(t, err)
}

func TestResolveSession_ExpiredDeletes(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	repo.users[1] = &entity.User{ID: 1, Email: "alice@example.com", Role: entity.RoleUser}
	repo.sessions["old"] = &entity.Session{Token: "old", UserID: 1, ExpiresAt: testNow.Add(-time.Second)}

	_, err := uc.ResolveSession(session.SetToken(t.Context(), "old"))
	assert.Error(t, err)
	assert.Empty(t, repo.sessions)
}

func TestRequireAdmin(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUsecase(t, repo, &fakeMailer{}, clock.NewFixed(testNow))
	repo.users[1] = &entity.User{ID: 1, Email: "alice@example.com", Role: entity.RoleUser}
	repo.users[2] = &entity.User{ID: 2, Email: "admin@example.com", Role: entity.RoleAdmin}
	repo.sessions["user"] = &entity.Session{Token: "user", UserID: 1, ExpiresAt: testNow.Add(time.Hour)}
	repo.sessions["admin"] = &entity.Session{Token: "admin", UserID: 2, ExpiresAt: testNow.Add(time.Hour)}

	_, err := uc.RequireAdmin(session.SetToken(t.Context(), "user"))
	assert.Error(t, err)

	user, err := uc.RequireAdmin(session.SetToken(t.Context(), "admin"))
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}
