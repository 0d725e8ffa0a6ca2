package inbound

import (
	"github.com/promonhq/promon/internal/pkg/router"
	"github.com/promonhq/promon/internal/report/entity"
	"github.com/promonhq/promon/internal/report/usecase"
)

// HTTPEndpoint exposes HTTP handlers for monthly programme reports.
type HTTPEndpoint struct {
	uc uc
}

// SubmitReport files a monthly report for the logged-in user.
func (h *HTTPEndpoint) SubmitReport(r *router.Request) (any, error) {
	var req SubmitReportRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SubmitReport(r.Context(), usecase.SubmitReportInput{
		ProgrammeName:         req.ProgrammeName,
		FocalDepartment:       req.FocalDepartment,
		FocalAideHM:           req.FocalAideHM,
		FocalMinistryOfficial: req.FocalMinistryOfficial,
		ReportingMonth:        req.ReportingMonth,
		ProgrammeLaunchDate:   req.ProgrammeLaunchDate,
		TotalYouthRegistered:  req.TotalYouthRegistered,
		YouthTrained:          req.YouthTrained,
		YouthFunded:           req.YouthFunded,
		YouthWithOutcomes:     req.YouthWithOutcomes,
		Partnerships:          req.Partnerships,
		Challenges:            req.Challenges,
		MitigationStrategies:  req.MitigationStrategies,
		ScaleUpPlans:          req.ScaleUpPlans,
		SuccessStory:          req.SuccessStory,
	})
	if err != nil {
		return nil, err
	}

	return SubmitReportResponse{ReportID: resp.ReportID}, nil
}

// ListReports returns reports visible to the caller, newest first.
func (h *HTTPEndpoint) ListReports(r *router.Request) (any, error) {
	reports, err := h.uc.ListReports(r.Context())
	if err != nil {
		return nil, err
	}

	resp := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		resp = append(resp, toReportResponse(report))
	}

	return resp, nil
}

// Dashboard returns system-wide report totals for admins.
func (h *HTTPEndpoint) Dashboard(r *router.Request) (any, error) {
	out, err := h.uc.Dashboard(r.Context())
	if err != nil {
		return nil, err
	}

	return DashboardResponse{
		TotalYouthRegistered:   out.TotalYouthRegistered,
		TotalTrained:           out.TotalTrained,
		TotalYouthFunded:       out.TotalYouthFunded,
		TotalYouthWithOutcomes: out.TotalYouthWithOutcomes,
		TotalReports:           out.TotalReports,
		TrainingPercentage:     out.TrainingPercentage,
	}, nil
}

// SendReminders emails every non-admin user who has not filed this month's
// report. Admin only.
func (h *HTTPEndpoint) SendReminders(r *router.Request) (any, error) {
	out, err := h.uc.SendReminders(r.Context())
	if err != nil {
		return nil, err
	}

	return SendRemindersResponse{RemindersSent: out.RemindersSent}, nil
}

// NotifyChallenges alerts admins about recent reports with challenges. Admin
// only.
func (h *HTTPEndpoint) NotifyChallenges(r *router.Request) (any, error) {
	out, err := h.uc.NotifyChallenges(r.Context())
	if err != nil {
		return nil, err
	}

	return NotifyChallengesResponse{NotificationsSent: out.NotificationsSent}, nil
}

func toReportResponse(report entity.MonthlyReport) ReportResponse {
	launchDate := ""
	if report.ProgrammeLaunchDate != nil {
		launchDate = report.ProgrammeLaunchDate.Format("2006-01-02")
	}

	return ReportResponse{
		ID:                    report.ID,
		ProgrammeName:         report.ProgrammeName,
		SubmittedBy:           report.SubmittedBy,
		FocalDepartment:       report.FocalDepartment,
		FocalAideHM:           report.FocalAideHM,
		FocalMinistryOfficial: report.FocalMinistryOfficial,
		ReportingMonth:        report.ReportingMonth.Format("2006-01"),
		ProgrammeLaunchDate:   launchDate,
		TotalYouthRegistered:  report.TotalYouthRegistered,
		YouthTrained:          report.YouthTrained,
		YouthFunded:           report.YouthFunded,
		YouthWithOutcomes:     report.YouthWithOutcomes,
		Partnerships:          report.Partnerships,
		Challenges:            report.Challenges,
		MitigationStrategies:  report.MitigationStrategies,
		ScaleUpPlans:          report.ScaleUpPlans,
		SuccessStory:          report.SuccessStory,
		CreatedAt:             report.CreatedAt,
	}
}
