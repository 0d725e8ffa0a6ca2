package entity

import "errors"

// OTP verification failures. Public callers only ever see a generic message;
// these sentinels exist so internal callers and tests can tell the cases
// apart.
var (
	ErrCodeInvalid = errors.New("identity: otp code not found")
	ErrCodeUsed    = errors.New("identity: otp code already used")
	ErrCodeExpired = errors.New("identity: otp code expired")
)
