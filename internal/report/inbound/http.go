package inbound

import (
	"context"

	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/report/entity"
	"github.com/promonhq/promon/internal/report/usecase"
)

type uc interface {
	SubmitReport(ctx context.Context, in usecase.SubmitReportInput) (*usecase.SubmitReportOutput, error)
	ListReports(ctx context.Context) ([]entity.MonthlyReport, error)
	Dashboard(ctx context.Context) (*usecase.DashboardOutput, error)
	SendReminders(ctx context.Context) (*usecase.SendRemindersOutput, error)
	NotifyChallenges(ctx context.Context) (*usecase.NotifyChallengesOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// need authenticated
	r.POST("/api/v1/reports", end.SubmitReport)
	r.GET("/api/v1/reports", end.ListReports)

	// need admin
	r.GET("/api/v1/reports/dashboard", end.Dashboard)
	r.POST("/api/v1/reports/admin/send-reminders", end.SendReminders)
	r.POST("/api/v1/reports/admin/notify-challenges", end.NotifyChallenges)
}
