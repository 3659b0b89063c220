package client

import "context"

// Next advances the pipeline to the following stage.
type Next func(ctx context.Context, req *Request) (*Response, error)

// Stage is one step of the request pipeline. A stage may inspect or modify
// the request, short-circuit, or transform the response on the way back.
type Stage func(ctx context.Context, req *Request, next Next) (*Response, error)

// chain composes stages around a final transport function, first stage
// outermost.
func chain(stages []Stage, final Next) Next {
	next := final
	for i := len(stages) - 1; i >= 0; i-- {
		stage := stages[i]
		inner := next
		next = func(ctx context.Context, req *Request) (*Response, error) {
			return stage(ctx, req, inner)
		}
	}
	return next
}
