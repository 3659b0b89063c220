// Package guard implements the gate protecting authenticated views. The
// machine itself is side-effect free: Evaluate returns a command and the
// host environment executes it.
package guard

import (
	"github.com/ficomdev/ficomtest/internal/client/state"
	"github.com/ficomdev/ficomtest/internal/common"
)

// State of the guard machine.
type State int

const (
	// StateLoading is the initial state, held until the auth context
	// finishes its restoration read.
	StateLoading State = iota

	// StateAuthenticated renders protected content.
	StateAuthenticated

	// StateUnauthenticated triggers a redirect to the login entry point.
	StateUnauthenticated
)

// CommandKind discriminates guard commands.
type CommandKind int

const (
	// ShowLoading renders a loading indicator and nothing else.
	ShowLoading CommandKind = iota

	// RenderContent renders the protected content.
	RenderContent

	// Redirect navigates to Path. Emitted exactly once per entry into
	// StateUnauthenticated.
	Redirect

	// RenderNothing renders nothing; the redirect has already been issued.
	RenderNothing
)

// Command is the effect the host must execute after a transition.
type Command struct {
	Kind CommandKind
	Path string
}

// Guard re-evaluates on every auth state change, not only at mount.
type Guard struct {
	state      State
	redirected bool
}

func New() *Guard {
	return &Guard{state: StateLoading}
}

// State returns the machine's current state.
func (g *Guard) State() State {
	return g.state
}

// Evaluate transitions the machine for the given snapshot and returns the
// command the host should execute.
//
// Transitions out of StateLoading happen exactly once, right after the
// restoration read completes. Re-entering StateUnauthenticated from
// StateAuthenticated (after ClearAuth) emits the redirect again.
func (g *Guard) Evaluate(s state.Snapshot) Command {
	if s.Loading {
		g.state = StateLoading
		return Command{Kind: ShowLoading}
	}

	if s.Authenticated() {
		g.state = StateAuthenticated
		g.redirected = false
		return Command{Kind: RenderContent}
	}

	entering := g.state != StateUnauthenticated
	g.state = StateUnauthenticated
	if entering || !g.redirected {
		g.redirected = true
		return Command{Kind: Redirect, Path: common.LoginPath}
	}
	return Command{Kind: RenderNothing}
}
