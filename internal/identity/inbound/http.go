package inbound

import (
	"context"

	"github.com/promonhq/promon/internal/identity/usecase"
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/pkg/session"
)

type uc interface {
	RequestOTP(ctx context.Context, in usecase.RequestOTPInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	Logout(ctx context.Context) error
	ResolveSession(ctx context.Context) (*session.User, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/request-otp", end.RequestOTP)
	r.POST("/api/v1/auth/verify-otp", end.VerifyOTP)
	r.POST("/api/v1/auth/logout", end.Logout)
	r.GET("/api/v1/auth/me", end.Me) // need authenticated
}
