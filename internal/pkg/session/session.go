// Package session carries the session cookie token and the resolved
// authenticated principal through request contexts.
//
// The HTTP layer only extracts the raw cookie value; resolving it against the
// session store is a business operation owned by the identity module, so the
// two halves communicate through this package instead of importing each other.
package session

import "context"

// CookieName is the HTTP cookie that transports the session token.
const CookieName = "session_token"

// Role values a resolved principal can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the authenticated principal resolved from a session token.
type User struct {
	// ID is the user row identifier.
	ID int64
	// Email is the user's login email.
	Email string
	// Role is either RoleUser or RoleAdmin.
	Role string
}

// IsAdmin reports whether the principal holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type tokenContextKey struct{}

// SetToken stores the raw session token in the context.
func SetToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// GetToken returns the raw session token stored in the context, if any.
func GetToken(ctx context.Context) string {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	if !ok {
		return ""
	}

	return token
}
