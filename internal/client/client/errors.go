package client

import (
	"errors"
	"fmt"

	"github.com/ficomdev/ficomtest/internal/common"
)

var (
	// ErrUnavailable marks transport failures: the server could not be
	// reached at all. Distinct from a reachable server rejecting a request.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized is returned when authentication definitively failed
	// and no recovery (refresh) was possible.
	ErrUnauthorized = errors.New("unauthorized")
)

// GraphQLError is a server-signaled error carrying the extensions.code
// discriminator. Non-auth codes pass through to callers unmodified.
type GraphQLError struct {
	Message string
	Code    string
}

func (e *GraphQLError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// isUnauthenticated reports whether err is a server-signaled
// authentication failure.
func isUnauthenticated(err error) bool {
	var ge *GraphQLError
	return errors.As(err, &ge) && ge.Code == common.CodeUnauthenticated
}
