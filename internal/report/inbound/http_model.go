package inbound

import (
	"fmt"
	"time"
)

type SubmitReportRequest struct {
	ProgrammeName         string `json:"programme_name"`
	FocalDepartment       string `json:"focal_department"`
	FocalAideHM           string `json:"focal_aide_hm"`
	FocalMinistryOfficial string `json:"focal_ministry_official"`
	ReportingMonth        string `json:"reporting_month"`
	ProgrammeLaunchDate   string `json:"programme_launch_date"`
	TotalYouthRegistered  int32  `json:"total_youth_registered"`
	YouthTrained          int32  `json:"youth_trained"`
	YouthFunded           int32  `json:"youth_funded"`
	YouthWithOutcomes     int32  `json:"youth_with_outcomes"`
	Partnerships          string `json:"partnerships"`
	Challenges            string `json:"challenges"`
	MitigationStrategies  string `json:"mitigation_strategies"`
	ScaleUpPlans          string `json:"scale_up_plans"`
	SuccessStory          string `json:"success_story"`
}

type SubmitReportResponse struct {
	ReportID int64 `json:"report_id"`
}

func (SubmitReportResponse) Message() string {
	return "Report submitted successfully."
}

type ReportResponse struct {
	ID                    int64     `json:"id"`
	ProgrammeName         string    `json:"programme_name"`
	SubmittedBy           int64     `json:"submitted_by,omitempty"`
	FocalDepartment       string    `json:"focal_department"`
	FocalAideHM           string    `json:"focal_aide_hm"`
	FocalMinistryOfficial string    `json:"focal_ministry_official"`
	ReportingMonth        string    `json:"reporting_month"`
	ProgrammeLaunchDate   string    `json:"programme_launch_date,omitempty"`
	TotalYouthRegistered  int32     `json:"total_youth_registered"`
	YouthTrained          int32     `json:"youth_trained"`
	YouthFunded           int32     `json:"youth_funded"`
	YouthWithOutcomes     int32     `json:"youth_with_outcomes"`
	Partnerships          string    `json:"partnerships"`
	Challenges            string    `json:"challenges"`
	MitigationStrategies  string    `json:"mitigation_strategies"`
	ScaleUpPlans          string    `json:"scale_up_plans"`
	SuccessStory          string    `json:"success_story"`
	CreatedAt             time.Time `json:"created_at"`
}

type SendRemindersResponse struct {
	RemindersSent int `json:"reminders_sent"`
}

func (r SendRemindersResponse) Message() string {
	return fmt.Sprintf("Sent %d reminder(s).", r.RemindersSent)
}

type NotifyChallengesResponse struct {
	NotificationsSent int `json:"notifications_sent"`
}

func (r NotifyChallengesResponse) Message() string {
	return fmt.Sprintf("Sent %d notification(s).", r.NotificationsSent)
}

type DashboardResponse struct {
	TotalYouthRegistered   int64   `json:"total_youth_registered"`
	TotalTrained           int64   `json:"total_trained"`
	TotalYouthFunded       int64   `json:"total_youth_funded"`
	TotalYouthWithOutcomes int64   `json:"total_youth_with_outcomes"`
	TotalReports           int64   `json:"total_reports"`
	TrainingPercentage     float64 `json:"training_percentage"`
}
