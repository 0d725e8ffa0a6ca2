package inbound

import (
	"context"

	"github.com/promonhq/promon/internal/programme/entity"
	"github.com/promonhq/promon/internal/programme/usecase"
	"github.com/promonhq/promon/internal/pkg/router"
)

type uc interface {
	ListProgrammes(ctx context.Context) ([]entity.Programme, error)
	CreateFormLink(ctx context.Context, in usecase.CreateFormLinkInput) (*usecase.CreateFormLinkOutput, error)
	SendFormLink(ctx context.Context, in usecase.SendFormLinkInput) (*usecase.SendFormLinkOutput, error)
	ValidateFormLink(ctx context.Context, programmeID int64, token string) (*entity.FormAccess, error)
	SubmitForm(ctx context.Context, in usecase.SubmitFormInput) (*usecase.SubmitFormOutput, error)
	AdminSummary(ctx context.Context) ([]entity.ProgrammeSummary, error)
	AdminSubmissions(ctx context.Context, in usecase.AdminSubmissionsInput) ([]entity.FormSubmission, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// need authenticated
	r.GET("/api/v1/programmes", end.ListProgrammes)

	// need admin
	r.POST("/api/v1/forms/admin/create-link", end.CreateFormLink)
	r.POST("/api/v1/forms/admin/send-link", end.SendFormLink)
	r.GET("/api/v1/forms/admin/summary", end.AdminSummary)
	r.GET("/api/v1/forms/admin/submissions", end.AdminSubmissions)

	// public, token-gated
	r.GET("/api/v1/forms/:id/info", end.FormInfo)
	r.POST("/api/v1/forms/:id/submit", end.SubmitForm)
}
