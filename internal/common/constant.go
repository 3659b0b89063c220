// Package common contains shared constants and sentinel errors used across
// FICOM Integration Testing components.
package common

// AuthHeaderName is the HTTP header that carries the access token on
// outbound GraphQL requests.
const AuthHeaderName = "Authorization"

// BearerPrefix prefixes the access token inside AuthHeaderName.
const BearerPrefix = "Bearer "

// LoginPath is the client-side route unauthenticated users are sent to.
// Both the auth guard and the network gateway's hard-failure path use it.
const LoginPath = "/login"

// Durable credential storage keys. The names must stay stable across
// versions, otherwise previously saved sessions become orphaned.
const (
	CredentialKeyAccessToken  = "access_token"
	CredentialKeyRefreshToken = "refresh_token"
	CredentialKeyUser         = "user"
)

// GraphQL error extension codes. CodeUnauthenticated is the only code the
// client core inspects; every other code passes through to the caller.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeBadUserInput    = "BAD_USER_INPUT"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)
