package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for IncogniChat.
// It includes standard claims required by the JWT specification and the custom
// claims needed to identify a participant across the HTTP API and the realtime
// gateway.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the user's stable account identifier (UUID). The realtime gateway
	// resolves this against the user store on every connection attempt.
	ID string `json:"id"`

	// Role is the participant's role ("user" or "admin") at the time the token
	// was issued. Admin-only surfaces re-verify the role against the store.
	Role string `json:"role"`
}
