package entity

import "time"

type User struct {
	ID        int64
	Email     string
	Role      Role
	CreatedAt time.Time
}

type OTP struct {
	ID        int64
	Email     string
	Code      string
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Session is a server-side login session. Token is the raw value handed to
// the client in a cookie; it is the primary key of the sessions table.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
