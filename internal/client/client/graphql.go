package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ficomdev/ficomtest/internal/client/cache"
	"github.com/ficomdev/ficomtest/internal/common"
	"github.com/ficomdev/ficomtest/internal/logging"
)

// AuthSession is the slice of the auth context the gateway needs: current
// tokens plus the hard-failure purge.
type AuthSession interface {
	AccessToken() string
	RefreshToken() string
	ClearAuth(ctx context.Context) error
}

// Navigator executes the forced client-side navigation to the login entry
// point when authentication definitively fails.
type Navigator interface {
	Navigate(path string)
}

// RefreshFunc performs one refresh-token exchange and installs the result
// into the auth session. The old access token is passed along for
// correlation only.
type RefreshFunc func(ctx context.Context, refreshToken, oldAccessToken string) error

// GraphQLClient sends GraphQL operations over HTTP through a stage pipeline.
type GraphQLClient struct {
	endpoint  string
	http      *http.Client
	session   AuthSession
	nav       Navigator
	responses *cache.Store
	logger    logging.Logger
	refresh   RefreshFunc
	sf        singleflight.Group
	pipeline  Next
}

// NewGraphQLClient constructs a gateway for the given endpoint. nav,
// responses, and logger may be nil; a refresher is wired in later by the
// auth service via SetRefresher.
func NewGraphQLClient(endpoint string, session AuthSession, nav Navigator, responses *cache.Store, logger logging.Logger) *GraphQLClient {
	c := &GraphQLClient{
		endpoint:  endpoint,
		http:      &http.Client{Timeout: 10 * time.Second},
		session:   session,
		nav:       nav,
		responses: responses,
		logger:    logger,
	}
	c.pipeline = chain([]Stage{c.attachCredentials, c.inspectResponse}, c.transport)
	return c
}

// SetHTTPClient replaces the underlying HTTP client (timeouts, transports).
func (c *GraphQLClient) SetHTTPClient(h *http.Client) { c.http = h }

// SetRefresher installs the refresh-token exchange used to recover from
// UNAUTHENTICATED responses.
func (c *GraphQLClient) SetRefresher(fn RefreshFunc) { c.refresh = fn }

// attachCredentials adds the current access token as a bearer credential.
// An absent token is not an error: the request proceeds unauthenticated and
// the server decides.
func (c *GraphQLClient) attachCredentials(ctx context.Context, req *Request, next Next) (*Response, error) {
	if token := c.session.AccessToken(); token != "" {
		req.Header().Set(common.AuthHeaderName, common.BearerPrefix+token)
	}
	return next(ctx, req)
}

// transport performs the network call. Failures to receive a response are
// wrapped in ErrUnavailable so callers can tell "server unreachable" apart
// from "server reachable but rejected".
func (c *GraphQLClient) transport(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, vs := range req.Header() {
		for _, v := range vs {
			httpReq.Header.Set(k, v)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %s", ErrUnavailable, httpResp.Status)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp := &Response{}
	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, fmt.Errorf("decoding response (status %s): %w", httpResp.Status, err)
	}
	return resp, nil
}

// inspectResponse scans the response for the authentication-failure signal
// and converts GraphQL-level errors into Go errors. Non-auth errors pass
// through unmodified; they never mutate auth state.
func (c *GraphQLClient) inspectResponse(ctx context.Context, req *Request, next Next) (*Response, error) {
	resp, err := next(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		first := resp.Errors[0]
		return nil, &GraphQLError{Message: first.Message, Code: first.Extensions.Code}
	}
	return resp, nil
}

// Do executes the operation and unmarshals the response data into out
// (which may be nil).
//
// On UNAUTHENTICATED the gateway surfaces the failure to the auth layer for
// a single refresh-and-retry: concurrent failures share one in-flight
// exchange and all retry with its result. Without a refresh token (or when
// the exchange itself fails) stored credentials are purged and the client
// is navigated to the login entry point.
func (c *GraphQLClient) Do(ctx context.Context, req *Request, out any) error {
	useCache := c.responses != nil && req.IsQuery()
	if useCache {
		if data, ok := c.responses.Get(req.cacheKey()); ok {
			return unmarshalData(data, out)
		}
	}

	resp, err := c.pipeline(ctx, req)
	if isUnauthenticated(err) && !req.NoAuthRetry {
		oldAccess := c.session.AccessToken()
		refreshToken := c.session.RefreshToken()
		if refreshToken == "" || c.refresh == nil {
			c.endSession(ctx)
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}

		if refreshErr := c.refreshOnce(ctx, refreshToken, oldAccess); refreshErr != nil {
			return fmt.Errorf("%w: %v", ErrUnauthorized, refreshErr)
		}

		// One retry with the renewed token; no recursion.
		req.Header().Del(common.AuthHeaderName)
		resp, err = c.pipeline(ctx, req)
	}
	if err != nil {
		return err
	}

	if useCache {
		c.responses.Set(req.cacheKey(), resp.Data)
	}
	return unmarshalData(resp.Data, out)
}

// refreshOnce coordinates concurrent refresh attempts: at most one exchange
// is in flight per refresh token, and every waiter observes its outcome.
// The exchange runs detached from the caller's cancellation because it
// mutates shared state and must settle consistently even if the
// originating view is gone.
func (c *GraphQLClient) refreshOnce(ctx context.Context, refreshToken, oldAccess string) error {
	_, err, _ := c.sf.Do(refreshToken, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		if err := c.refresh(detached, refreshToken, oldAccess); err != nil {
			c.logf(ctx, "token refresh failed", "error", err.Error())
			c.endSession(detached)
			return nil, err
		}
		return nil, nil
	})
	return err
}

// endSession purges stored credentials and forces navigation to the login
// entry point. Refresh failures funnel through the single-flight owner, so
// this cannot race with an in-flight refresh.
func (c *GraphQLClient) endSession(ctx context.Context) {
	if err := c.session.ClearAuth(context.WithoutCancel(ctx)); err != nil {
		c.logf(ctx, "clearing auth state failed", "error", err.Error())
	}
	if c.nav != nil {
		c.nav.Navigate(common.LoginPath)
	}
}

func (c *GraphQLClient) logf(ctx context.Context, msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(ctx, msg, args...)
	}
}

func unmarshalData(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}
