package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/logging"
	"github.com/ficomdev/ficomtest/internal/server/config"
	"github.com/ficomdev/ficomtest/internal/server/models"
	"github.com/ficomdev/ficomtest/internal/server/services"
	"github.com/ficomdev/ficomtest/internal/server/session"
)

// stubUsers is a canned UserService.
type stubUsers struct {
	user    *models.User
	pair    *services.TokenPair
	err     error
	userID  string
	veriErr error
}

func (s *stubUsers) Register(context.Context, string, string, string) (*models.User, *services.TokenPair, error) {
	return s.user, s.pair, s.err
}

func (s *stubUsers) Login(context.Context, string, string) (*models.User, *services.TokenPair, error) {
	return s.user, s.pair, s.err
}

func (s *stubUsers) RefreshToken(context.Context, string) (*models.User, *services.TokenPair, error) {
	return s.user, s.pair, s.err
}

func (s *stubUsers) Logout(context.Context, string) error { return s.err }

func (s *stubUsers) GetUser(context.Context, string) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUsers) VerifyAccessToken(string) (string, error) { return s.userID, s.veriErr }

func testServer(t *testing.T, users UserService) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	sessions, err := session.NewManager(cfg.SessionSecret, false)
	require.NoError(t, err)

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(cfg, users, sessions, logger)
}

func testUser() *models.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.User{ID: "u-1", Email: "alice@example.com", Name: "Alice", CreatedAt: now, UpdatedAt: now}
}

func testPair() *services.TokenPair {
	return &services.TokenPair{
		AccessToken:          "access-1",
		RefreshToken:         "refresh-1",
		AccessTokenExpiresAt: time.Now().Add(15 * time.Minute),
	}
}

func postGraphQL(t *testing.T, s *Server, body map[string]any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *graphQLResponse {
	t.Helper()
	resp := &graphQLResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), resp))
	return resp
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeEnvelope(t, rec)
	require.NotEmpty(t, resp.Errors)
	return resp.Errors[0].Extensions.Code
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin_Success_SetsSessionCookie(t *testing.T) {
	users := &stubUsers{user: testUser(), pair: testPair()}
	s := testServer(t, users)

	rec := postGraphQL(t, s, map[string]any{
		"query":         "mutation Login($email: String!, $password: String!) { login(email: $email, password: $password) { accessToken } }",
		"operationName": "Login",
		"variables":     map[string]any{"email": "alice@example.com", "password": "secret123"},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Login struct {
				AccessToken  string `json:"accessToken"`
				RefreshToken string `json:"refreshToken"`
				User         struct {
					ID    string `json:"id"`
					Email string `json:"email"`
				} `json:"user"`
			} `json:"login"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "access-1", resp.Data.Login.AccessToken)
	assert.Equal(t, "refresh-1", resp.Data.Login.RefreshToken)
	assert.Equal(t, "u-1", resp.Data.Login.User.ID)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestLogin_BadCredentials(t *testing.T) {
	users := &stubUsers{err: common.ErrorUnauthorized}
	s := testServer(t, users)

	rec := postGraphQL(t, s, map[string]any{
		"query":         "mutation Login($email: String!, $password: String!) { login(email: $email, password: $password) { accessToken } }",
		"operationName": "Login",
		"variables":     map[string]any{"email": "alice@example.com", "password": "wrong"},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))
}

func TestLogin_MalformedEmail_FailsWithoutServiceCall(t *testing.T) {
	users := &stubUsers{user: testUser(), pair: testPair()}
	s := testServer(t, users)

	rec := postGraphQL(t, s, map[string]any{
		"operationName": "Login",
		"variables":     map[string]any{"email": "not-an-email", "password": "x"},
	}, nil)

	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))
}

func TestSignUp_Validation(t *testing.T) {
	s := testServer(t, &stubUsers{user: testUser(), pair: testPair()})

	tests := []struct {
		name string
		vars map[string]any
	}{
		{name: "bad email", vars: map[string]any{"email": "nope", "password": "secret123", "name": "A"}},
		{name: "short password", vars: map[string]any{"email": "a@b.co", "password": "short", "name": "A"}},
		{name: "empty name", vars: map[string]any{"email": "a@b.co", "password": "secret123", "name": " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postGraphQL(t, s, map[string]any{"operationName": "SignUp", "variables": tt.vars}, nil)
			assert.Equal(t, common.CodeBadUserInput, errCode(t, rec))
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	s := testServer(t, &stubUsers{err: common.ErrorAlreadyExists})

	rec := postGraphQL(t, s, map[string]any{
		"operationName": "SignUp",
		"variables":     map[string]any{"email": "a@b.co", "password": "secret123", "name": "A"},
	}, nil)

	assert.Equal(t, common.CodeBadUserInput, errCode(t, rec))
}

func TestRefreshToken_Success(t *testing.T) {
	s := testServer(t, &stubUsers{user: testUser(), pair: testPair()})

	rec := postGraphQL(t, s, map[string]any{
		"operationName": "RefreshToken",
		"variables":     map[string]any{"refreshToken": "refresh-0", "oldAccessToken": "stale"},
	}, nil)

	resp := decodeEnvelope(t, rec)
	assert.Empty(t, resp.Errors)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
}

func TestRefreshToken_DeadToken_ClearsCookie(t *testing.T) {
	s := testServer(t, &stubUsers{err: common.ErrRefreshTokenExpired})

	rec := postGraphQL(t, s, map[string]any{
		"operationName": "RefreshToken",
		"variables":     map[string]any{"refreshToken": "dead"},
	}, nil)

	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestViewer_WithBearerToken(t *testing.T) {
	s := testServer(t, &stubUsers{user: testUser(), userID: "u-1"})

	h := http.Header{}
	h.Set(common.AuthHeaderName, common.BearerPrefix+"some-jwt")
	rec := postGraphQL(t, s, map[string]any{
		"query": "query Viewer { viewer { id email } }",
	}, h)

	var resp struct {
		Data struct {
			Viewer struct {
				ID string `json:"id"`
			} `json:"viewer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u-1", resp.Data.Viewer.ID)
}

func TestViewer_NoCredentials(t *testing.T) {
	s := testServer(t, &stubUsers{})

	rec := postGraphQL(t, s, map[string]any{"operationName": "Viewer"}, nil)

	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))
}

func TestViewer_ExpiredToken(t *testing.T) {
	s := testServer(t, &stubUsers{veriErr: common.ErrTokenExpired})

	h := http.Header{}
	h.Set(common.AuthHeaderName, common.BearerPrefix+"expired-jwt")
	rec := postGraphQL(t, s, map[string]any{"operationName": "Viewer"}, h)

	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))
}

func TestViewer_SessionCookieFallback(t *testing.T) {
	users := &stubUsers{user: testUser(), userID: "u-1"}
	s := testServer(t, users)

	cookie, err := s.sessions.Cookie(&session.Payload{AccessToken: "cookie-jwt"})
	require.NoError(t, err)

	b, err := json.Marshal(map[string]any{"operationName": "Viewer"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(string(b)))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var resp struct {
		Data struct {
			Viewer struct {
				ID string `json:"id"`
			} `json:"viewer"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u-1", resp.Data.Viewer.ID)
}

func TestUnknownOperation(t *testing.T) {
	s := testServer(t, &stubUsers{})

	rec := postGraphQL(t, s, map[string]any{"operationName": "Nonsense"}, nil)

	assert.Equal(t, common.CodeBadUserInput, errCode(t, rec))
}

func TestOperationName_SniffedFromQuery(t *testing.T) {
	s := testServer(t, &stubUsers{})

	rec := postGraphQL(t, s, map[string]any{
		"query": "query Viewer { viewer { id } }",
	}, nil)

	// Dispatched as Viewer without credentials.
	assert.Equal(t, common.CodeUnauthenticated, errCode(t, rec))
}

func TestMalformedBody(t *testing.T) {
	s := testServer(t, &stubUsers{})

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := testServer(t, &stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
