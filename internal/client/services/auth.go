// Package services contains application services for the FICOM Integration
// Testing client. This file defines the authentication service: login,
// signup, token refresh, and logout against the GraphQL backend.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ficomdev/ficomtest/internal/client/client"
	"github.com/ficomdev/ficomtest/internal/client/models"
	"github.com/ficomdev/ficomtest/internal/client/state"
	"github.com/ficomdev/ficomtest/internal/common"
)

// Gateway is the outbound request pipeline the service talks through.
type Gateway interface {
	Do(ctx context.Context, req *client.Request, out any) error
}

// AuthService defines the authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and install the resulting session.
//   - Register: create an account and install the resulting session.
//   - Refresh: exchange a refresh token for a fresh triple.
//   - Logout: drop the session and purge local credentials.
//
// Obviously invalid input is rejected locally, before any network call.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Refresh(ctx context.Context, refreshToken, oldAccessToken string) error
	Logout(ctx context.Context) error
}

const loginMutation = `mutation Login($email: String!, $password: String!) {
  login(email: $email, password: $password) {
    accessToken
    refreshToken
    user { id email name createdAt updatedAt }
  }
}`

const signUpMutation = `mutation SignUp($email: String!, $password: String!, $name: String!) {
  signUp(email: $email, password: $password, name: $name) {
    accessToken
    refreshToken
    user { id email name createdAt updatedAt }
  }
}`

const refreshTokenMutation = `mutation RefreshToken($refreshToken: String!, $oldAccessToken: String) {
  refreshToken(refreshToken: $refreshToken, oldAccessToken: $oldAccessToken) {
    accessToken
    refreshToken
    user { id email name createdAt updatedAt }
  }
}`

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// MinPasswordLength applies to new accounts only; existing passwords are
// whatever the server accepted at signup time.
const MinPasswordLength = 8

type authService struct {
	api   Gateway
	state *state.Context
}

// NewAuthService constructs an AuthService bound to the given gateway and
// auth state. It registers itself as the gateway's refresher so that
// UNAUTHENTICATED responses can be recovered transparently.
func NewAuthService(api Gateway, st *state.Context) AuthService {
	s := &authService{api: api, state: st}
	if gc, ok := api.(*client.GraphQLClient); ok {
		gc.SetRefresher(s.Refresh)
	}
	return s
}

// Login authenticates with email and password. On success the resulting
// triple is installed atomically via the auth context; on failure client
// state is left unchanged.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: empty password", common.ErrorValidation)
	}

	var resp struct {
		Login models.AuthPayload `json:"login"`
	}
	req := &client.Request{
		Query:         loginMutation,
		OperationName: "Login",
		Variables:     map[string]any{"email": email, "password": password},
	}
	if err := s.api.Do(ctx, req, &resp); err != nil {
		return nil, err
	}

	if err := s.state.SetAuth(ctx, resp.Login.User, resp.Login.AccessToken, resp.Login.RefreshToken); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return resp.Login.User, nil
}

// Register creates a new account. Email uniqueness is enforced server-side.
func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, MinPasswordLength)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", common.ErrorValidation)
	}

	var resp struct {
		SignUp models.AuthPayload `json:"signUp"`
	}
	req := &client.Request{
		Query:         signUpMutation,
		OperationName: "SignUp",
		Variables:     map[string]any{"email": email, "password": password, "name": name},
	}
	if err := s.api.Do(ctx, req, &resp); err != nil {
		return nil, err
	}

	if err := s.state.SetAuth(ctx, resp.SignUp.User, resp.SignUp.AccessToken, resp.SignUp.RefreshToken); err != nil {
		return nil, fmt.Errorf("persisting session: %w", err)
	}
	return resp.SignUp.User, nil
}

// Refresh exchanges the refresh token for a fresh triple and installs it.
// The old access token is sent for correlation only; the server never
// validates it.
func (s *authService) Refresh(ctx context.Context, refreshToken, oldAccessToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: empty refresh token", common.ErrorValidation)
	}

	var resp struct {
		RefreshToken models.AuthPayload `json:"refreshToken"`
	}
	req := &client.Request{
		Query:         refreshTokenMutation,
		OperationName: "RefreshToken",
		Variables:     map[string]any{"refreshToken": refreshToken, "oldAccessToken": oldAccessToken},
		NoAuthRetry:   true,
	}
	if err := s.api.Do(ctx, req, &resp); err != nil {
		return err
	}

	return s.state.SetAuth(ctx, resp.RefreshToken.User, resp.RefreshToken.AccessToken, resp.RefreshToken.RefreshToken)
}

// Logout drops the in-memory session, purges stored credentials, and
// invalidates cached per-user data.
func (s *authService) Logout(ctx context.Context) error {
	return s.state.ClearAuth(ctx)
}
