package entity

import "time"

// MonthlyReport is a programme's monthly progress report filed by a logged-in
// user. ReportingMonth is normalized to the first day of the month.
type MonthlyReport struct {
	ID                    int64
	ProgrammeName         string
	SubmittedBy           int64
	FocalDepartment       string
	FocalAideHM           string
	FocalMinistryOfficial string
	ReportingMonth        time.Time
	ProgrammeLaunchDate   *time.Time
	TotalYouthRegistered  int32
	YouthTrained          int32
	YouthFunded           int32
	YouthWithOutcomes     int32
	Partnerships          string
	Challenges            string
	MitigationStrategies  string
	ScaleUpPlans          string
	SuccessStory          string
	CreatedAt             time.Time
}

// DashboardTotals aggregates every report in the system.
type DashboardTotals struct {
	TotalYouthRegistered   int64
	TotalTrained           int64
	TotalYouthFunded       int64
	TotalYouthWithOutcomes int64
	TotalReports           int64
}
