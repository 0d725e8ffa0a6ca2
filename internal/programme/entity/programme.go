package entity

import (
	"time"

	"github.com/promonhq/promon/internal/pkg/valueobject"
)

type Programme struct {
	ID             int64
	Name           string
	Department     string
	RecipientEmail string
	CreatedAt      time.Time
}

// FormToken is the stored record of an issued form link. Only the SHA-256
// digest of the token is kept; the signed token itself never touches the
// database.
type FormToken struct {
	TokenHash      string
	ProgrammeID    int64
	RecipientEmail string
	Used           bool
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

type FormSubmission struct {
	ID             int64
	ProgrammeID    int64
	RecipientEmail string
	FormData       valueobject.JSONMap
	SubmittedAt    time.Time
}

// FormAccess is the proof that a token grants access to a programme's form.
type FormAccess struct {
	Programme      Programme
	RecipientEmail string
	TokenHash      string
}

// ProgrammeSummary aggregates submission activity per programme.
type ProgrammeSummary struct {
	ProgrammeID     int64
	ProgrammeName   string
	Department      string
	SubmissionCount int64
	LastSubmittedAt *time.Time
}
