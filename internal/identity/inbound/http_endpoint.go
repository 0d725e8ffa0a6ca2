package inbound

import (
	"github.com/promonhq/promon/internal/identity/usecase"
	"github.com/promonhq/promon/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the OTP login workflow.
type HTTPEndpoint struct {
	uc uc
}

// RequestOTP issues a one-time login code and emails it to the user.
func (h *HTTPEndpoint) RequestOTP(r *router.Request) (any, error) {
	var req RequestOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestOTP(r.Context(), usecase.RequestOTPInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return RequestOTPResponse{}, nil
}

// VerifyOTP exchanges a valid code for a server-side session. The session
// token travels back only in an HttpOnly cookie, never in the body.
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		Email:  resp.User.Email,
		Role:   resp.User.Role.String(),
		cookie: sessionCookie(resp.SessionToken, resp.CookieMaxAge),
	}, nil
}

// Logout deletes the caller's session and clears the cookie.
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// Me returns the authenticated principal behind the session cookie.
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	user, err := h.uc.ResolveSession(r.Context())
	if err != nil {
		return nil, err
	}

	return MeResponse{Email: user.Email, Role: user.Role}, nil
}
