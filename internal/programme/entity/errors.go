package entity

import "errors"

// Token validation failures. Public callers only ever see a generic message;
// these sentinels exist so internal callers and tests can tell the cases
// apart.
var (
	ErrBadToken              = errors.New("programme: token failed verification")
	ErrProgrammeMismatch     = errors.New("programme: token issued for another programme")
	ErrRecipientNotSet       = errors.New("programme: no recipient configured")
	ErrRecipientMismatch     = errors.New("programme: token recipient does not match")
	ErrTokenUnknown          = errors.New("programme: token record not found")
	ErrTokenRecordExpired    = errors.New("programme: token record expired")
	ErrTokenUsed             = errors.New("programme: token already used")
	ErrProgrammeNameMismatch = errors.New("programme: submitted name does not match")
)
