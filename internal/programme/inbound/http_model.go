package inbound

import (
	"time"

	"github.com/promonhq/promon/internal/pkg/valueobject"
)

type ProgrammeResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	RecipientEmail string `json:"recipient_email,omitempty"`
}

type CreateFormLinkRequest struct {
	ProgrammeID int64  `json:"programme_id"`
	Email       string `json:"email"`
}

type CreateFormLinkResponse struct {
	ProgrammeID int64     `json:"programme_id"`
	Link        string    `json:"link"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SendFormLinkRequest struct {
	ProgrammeID int64  `json:"programme_id"`
	Email       string `json:"email"`
}

type SendFormLinkResponse struct {
	ProgrammeID int64     `json:"programme_id"`
	Link        string    `json:"link"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (SendFormLinkResponse) Message() string {
	return "Form link has been sent to the recipient."
}

type FormInfoResponse struct {
	ProgrammeID    int64  `json:"programme_id"`
	ProgrammeName  string `json:"programme_name"`
	Department     string `json:"department"`
	RecipientEmail string `json:"recipient_email"`
}

type SubmitFormRequest struct {
	ProgrammeName string              `json:"programme_name"`
	FormData      valueobject.JSONMap `json:"form_data"`
}

type SubmitFormResponse struct {
	SubmissionID int64 `json:"submission_id"`
}

func (SubmitFormResponse) Message() string {
	return "Submission received. Thank you."
}

type ProgrammeSummaryResponse struct {
	ProgrammeID     int64      `json:"programme_id"`
	ProgrammeName   string     `json:"programme_name"`
	Department      string     `json:"department"`
	SubmissionCount int64      `json:"submission_count"`
	LastSubmittedAt *time.Time `json:"last_submitted_at,omitempty"`
}

type SubmissionResponse struct {
	ID             int64               `json:"id"`
	ProgrammeID    int64               `json:"programme_id"`
	RecipientEmail string              `json:"recipient_email"`
	FormData       valueobject.JSONMap `json:"form_data"`
	SubmittedAt    time.Time           `json:"submitted_at"`
}
