package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/server/models"
	"github.com/ficomdev/ficomtest/internal/server/services"
	"github.com/ficomdev/ficomtest/internal/server/session"
)

// graphQLRequest is the standard GraphQL-over-HTTP POST body.
type graphQLRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName"`
	Variables     json.RawMessage `json:"variables"`
}

type errorExtensions struct {
	Code string `json:"code"`
}

type graphQLError struct {
	Message    string          `json:"message"`
	Extensions errorExtensions `json:"extensions"`
}

type graphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []graphQLError `json:"errors,omitempty"`
}

// userDTO is the wire shape of a user object.
type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// authPayloadDTO is the wire shape of a successful auth operation.
type authPayloadDTO struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	User         userDTO `json:"user"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// handleGraphQL dispatches an operation by name. Errors are reported in
// the GraphQL envelope with HTTP 200; transport-level failures (malformed
// body) get a 400.
func (s *Server) handleGraphQL(c echo.Context) error {
	req := &graphQLRequest{}
	if err := json.NewDecoder(c.Request().Body).Decode(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse("malformed request body", common.CodeBadUserInput))
	}

	op := req.OperationName
	if op == "" {
		op = sniffOperation(req.Query)
	}

	switch op {
	case "Login":
		return s.resolveLogin(c, req)
	case "SignUp":
		return s.resolveSignUp(c, req)
	case "RefreshToken":
		return s.resolveRefreshToken(c, req)
	case "Logout":
		return s.resolveLogout(c, req)
	case "Viewer":
		return s.resolveViewer(c)
	default:
		return c.JSON(http.StatusOK, errorResponse("unknown operation", common.CodeBadUserInput))
	}
}

// sniffOperation extracts the operation name from the query document when
// the request omits operationName.
var operationPattern = regexp.MustCompile(`^\s*(?:query|mutation)\s+([A-Za-z_][A-Za-z0-9_]*)`)

func sniffOperation(query string) string {
	m := operationPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return m[1]
}

func errorResponse(message, code string) *graphQLResponse {
	return &graphQLResponse{
		Errors: []graphQLError{{Message: message, Extensions: errorExtensions{Code: code}}},
	}
}

// serviceError maps service sentinels onto the GraphQL error envelope.
func (s *Server) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return c.JSON(http.StatusOK, errorResponse("unauthenticated", common.CodeUnauthenticated))
	case errors.Is(err, common.ErrorAlreadyExists):
		return c.JSON(http.StatusOK, errorResponse("email is already registered", common.CodeBadUserInput))
	default:
		s.logger.Error(c.Request().Context(), "graphql operation failed", "error", err)
		return c.JSON(http.StatusOK, errorResponse("internal server error", common.CodeInternal))
	}
}

func (s *Server) resolveLogin(c echo.Context, req *graphQLRequest) error {
	var vars struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(req.Variables, &vars); err != nil {
		return c.JSON(http.StatusOK, errorResponse("malformed variables", common.CodeBadUserInput))
	}

	vars.Email = strings.TrimSpace(vars.Email)
	if !emailPattern.MatchString(vars.Email) || vars.Password == "" {
		return c.JSON(http.StatusOK, errorResponse("invalid credentials", common.CodeUnauthenticated))
	}

	user, pair, err := s.users.Login(c.Request().Context(), vars.Email, vars.Password)
	if err != nil {
		return s.serviceError(c, err)
	}

	s.setSessionCookie(c, pair)

	return c.JSON(http.StatusOK, &graphQLResponse{Data: echo.Map{
		"login": authPayloadDTO{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			User:         toUserDTO(user),
		},
	}})
}

func (s *Server) resolveSignUp(c echo.Context, req *graphQLRequest) error {
	var vars struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.Unmarshal(req.Variables, &vars); err != nil {
		return c.JSON(http.StatusOK, errorResponse("malformed variables", common.CodeBadUserInput))
	}

	vars.Email = strings.TrimSpace(vars.Email)
	vars.Name = strings.TrimSpace(vars.Name)
	switch {
	case !emailPattern.MatchString(vars.Email):
		return c.JSON(http.StatusOK, errorResponse("malformed email", common.CodeBadUserInput))
	case len(vars.Password) < minPasswordLength:
		return c.JSON(http.StatusOK, errorResponse("password is too short", common.CodeBadUserInput))
	case vars.Name == "":
		return c.JSON(http.StatusOK, errorResponse("name is required", common.CodeBadUserInput))
	}

	user, pair, err := s.users.Register(c.Request().Context(), vars.Email, vars.Password, vars.Name)
	if err != nil {
		return s.serviceError(c, err)
	}

	s.setSessionCookie(c, pair)

	return c.JSON(http.StatusOK, &graphQLResponse{Data: echo.Map{
		"signUp": authPayloadDTO{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			User:         toUserDTO(user),
		},
	}})
}

func (s *Server) resolveRefreshToken(c echo.Context, req *graphQLRequest) error {
	var vars struct {
		RefreshToken string `json:"refreshToken"`
		// OldAccessToken is accepted for correlation but never validated.
		OldAccessToken string `json:"oldAccessToken"`
	}
	if err := json.Unmarshal(req.Variables, &vars); err != nil {
		return c.JSON(http.StatusOK, errorResponse("malformed variables", common.CodeBadUserInput))
	}

	if vars.RefreshToken == "" {
		c.SetCookie(s.sessions.ClearCookie())
		return c.JSON(http.StatusOK, errorResponse("unauthenticated", common.CodeUnauthenticated))
	}

	user, pair, err := s.users.RefreshToken(c.Request().Context(), vars.RefreshToken)
	if err != nil {
		// A dead refresh token ends the session for good.
		c.SetCookie(s.sessions.ClearCookie())
		return s.serviceError(c, err)
	}

	s.setSessionCookie(c, pair)

	return c.JSON(http.StatusOK, &graphQLResponse{Data: echo.Map{
		"refreshToken": authPayloadDTO{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			User:         toUserDTO(user),
		},
	}})
}

func (s *Server) resolveLogout(c echo.Context, req *graphQLRequest) error {
	var vars struct {
		RefreshToken string `json:"refreshToken"`
	}
	if len(req.Variables) > 0 {
		if err := json.Unmarshal(req.Variables, &vars); err != nil {
			return c.JSON(http.StatusOK, errorResponse("malformed variables", common.CodeBadUserInput))
		}
	}

	if vars.RefreshToken != "" {
		if err := s.users.Logout(c.Request().Context(), vars.RefreshToken); err != nil {
			return s.serviceError(c, err)
		}
	}

	c.SetCookie(s.sessions.ClearCookie())

	return c.JSON(http.StatusOK, &graphQLResponse{Data: echo.Map{"logout": true}})
}

func (s *Server) resolveViewer(c echo.Context) error {
	token := s.requestAccessToken(c)
	if token == "" {
		return c.JSON(http.StatusOK, errorResponse("unauthenticated", common.CodeUnauthenticated))
	}

	userID, err := s.users.VerifyAccessToken(token)
	if err != nil {
		return s.serviceError(c, err)
	}

	user, err := s.users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return s.serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &graphQLResponse{Data: echo.Map{
		"viewer": toUserDTO(user),
	}})
}

// requestAccessToken extracts the access token from the Authorization
// header, falling back to the encrypted session cookie.
func (s *Server) requestAccessToken(c echo.Context) string {
	header := c.Request().Header.Get(common.AuthHeaderName)
	if strings.HasPrefix(header, common.BearerPrefix) {
		return strings.TrimPrefix(header, common.BearerPrefix)
	}

	cookie, err := c.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	payload, err := s.sessions.Open(cookie.Value)
	if err != nil {
		return ""
	}
	return payload.AccessToken
}

// setSessionCookie seals the freshly issued pair into the session cookie.
// Cookie failures are logged but never fail the operation; bearer clients
// do not depend on the cookie at all.
func (s *Server) setSessionCookie(c echo.Context, pair *services.TokenPair) {
	expiresAt := pair.AccessTokenExpiresAt
	cookie, err := s.sessions.Cookie(&session.Payload{
		AccessToken:          pair.AccessToken,
		RefreshToken:         pair.RefreshToken,
		AccessTokenExpiresAt: &expiresAt,
	})
	if err != nil {
		s.logger.Error(c.Request().Context(), "sealing session cookie", "error", err)
		return
	}
	c.SetCookie(cookie)
}
