package guard

import "github.com/ficomdev/ficomtest/internal/client/state"

// Navigator executes client-side navigation on behalf of the guard.
type Navigator interface {
	Navigate(path string)
}

// Watch wires a guard to the auth context: every state change re-evaluates
// the machine and redirect commands are executed through nav. The returned
// function detaches the guard, cancelling any future redirect effect;
// in-flight auth operations are not affected.
func Watch(auth *state.Context, g *Guard, nav Navigator) func() {
	evaluate := func(s state.Snapshot) {
		if cmd := g.Evaluate(s); cmd.Kind == Redirect {
			nav.Navigate(cmd.Path)
		}
	}
	evaluate(auth.Snapshot())
	return auth.Subscribe(evaluate)
}
