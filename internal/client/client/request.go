package client

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Request is a single GraphQL operation. Stages may add headers before the
// transport stage sends it.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`

	// NoAuthRetry opts the request out of refresh-and-retry recovery.
	// Set on the refresh exchange itself, which must never recurse.
	NoAuthRetry bool `json:"-"`

	header http.Header
}

// Header returns the mutable header set sent with the request.
func (r *Request) Header() http.Header {
	if r.header == nil {
		r.header = http.Header{}
	}
	return r.header
}

// IsQuery reports whether the operation is a read (cacheable) as opposed to
// a mutation.
func (r *Request) IsQuery() bool {
	q := strings.TrimSpace(r.Query)
	return !strings.HasPrefix(q, "mutation")
}

// cacheKey identifies the operation plus its variables.
func (r *Request) cacheKey() string {
	vars, _ := json.Marshal(r.Variables)
	return r.OperationName + "\x00" + r.Query + "\x00" + string(vars)
}

// ResponseError is one entry of the GraphQL errors array.
type ResponseError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Response is the raw GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []ResponseError `json:"errors"`
}
