package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of a session cookie.
// The token only points at a server-side session; it carries no user data.
type Claims struct {
	jwt.RegisteredClaims

	// SessionID is the opaque key of the session record.
	SessionID string `json:"sid"`
}
