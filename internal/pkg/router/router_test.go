package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promonhq/promon/internal/pkg/config"
	"github.com/promonhq/promon/internal/pkg/goerror"
	"github.com/promonhq/promon/internal/pkg/instrument"
	"github.com/promonhq/promon/internal/pkg/session"
	"github.com/promonhq/promon/internal/pkg/uid"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: test\n"))
	require.NoError(t, err)

	return NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
}

type whoamiResponse struct {
	Token string `json:"token"`
}

func TestRouter_SessionCookieReachesHandler(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/whoami", func(req *Request) (any, error) {
		return whoamiResponse{Token: session.GetToken(req.Context())}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc123"})
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data whoamiResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc123", body.Data.Token)
}

func TestRouter_NoCookieMeansNoToken(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/whoami", func(req *Request) (any, error) {
		return whoamiResponse{Token: session.GetToken(req.Context())}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data whoamiResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Data.Token)
}

type cookieResponse struct {
	OK bool `json:"ok"`
}

func (cookieResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{
		Name:     session.CookieName,
		Value:    "issued-token",
		Path:     "/",
		HttpOnly: true,
	}}
}

func TestRouter_ResponseCookiesAreSet(t *testing.T) {
	r := newTestRouter(t)
	r.POST("/login", func(*Request) (any, error) {
		return cookieResponse{OK: true}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.Equal(t, "issued-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRouter_ErrorCodec(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/secret", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Not authenticated", goerror.CodeUnauthorized)
	})

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Not authenticated", body.Message)
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
