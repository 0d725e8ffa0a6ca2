package inbound

import (
	"net/http"

	"github.com/promonhq/promon/internal/pkg/session"
)

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type RequestOTPResponse struct{}

func (RequestOTPResponse) Message() string {
	return "If the email address is valid, a login code has been sent."
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyOTPResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`

	cookie *http.Cookie
}

func (VerifyOTPResponse) Message() string {
	return "Login successful."
}

func (r VerifyOTPResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{r.cookie}
}

func sessionCookie(token string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out."
}

func (LogoutResponse) Cookies() []*http.Cookie {
	// MaxAge < 0 tells the browser to drop the cookie immediately.
	return []*http.Cookie{{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}}
}

type MeResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
