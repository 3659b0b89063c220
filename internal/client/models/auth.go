package models

// AuthPayload is the triple returned by the login, signUp, and refreshToken
// operations. The tokens are opaque to the client.
type AuthPayload struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
