package core

import (
	"context"
	"fmt"
)

// Request is a transport-neutral auth request. CallerID identifies the
// caller's session; Body is the decoded request body.
type Request struct {
	CallerID string
	Body     map[string]any
}

// ResponseKind tags what a successful Response carries.
type ResponseKind int

const (
	// ResponseEcho returns the request body to the caller.
	ResponseEcho ResponseKind = iota + 1
	// ResponseWelcome returns a greeting for an already authenticated caller.
	ResponseWelcome
)

// Response is the successful outcome of a guard or an auth operation.
type Response struct {
	Kind    ResponseKind
	Body    map[string]any
	Message string
}

func welcomeBack(username string) Response {
	return Response{Kind: ResponseWelcome, Message: fmt.Sprintf("Welcome back %s", username)}
}

// Verdict is the result of a single guard: either continue to the next step
// or halt with a response.
type Verdict struct {
	Halt     bool
	Response Response
}

// Guard inspects a request before any auth operation runs.
// A non-nil error rejects the request.
type Guard func(ctx context.Context, req Request) (Verdict, error)

// GuardChain runs guards in order and stops at the first halt or error.
type GuardChain []Guard

// Run evaluates the chain. A zero Verdict means every guard let the request through.
func (gc GuardChain) Run(ctx context.Context, req Request) (Verdict, error) {
	for _, g := range gc {
		v, err := g(ctx, req)
		if err != nil {
			return Verdict{}, err
		}
		if v.Halt {
			return v, nil
		}
	}
	return Verdict{}, nil
}

// SessionShortCircuit halts with a welcome message when the caller is already logged in.
func SessionShortCircuit(sessions SessionState) Guard {
	return func(ctx context.Context, req Request) (Verdict, error) {
		sess, err := sessions.Read(ctx, req.CallerID)
		if err != nil {
			return Verdict{}, err
		}
		if sess.Authenticated() {
			return Verdict{Halt: true, Response: welcomeBack(sess.Username)}, nil
		}
		return Verdict{}, nil
	}
}

// RequireFields rejects the request when any of fields is absent from the body.
// Fields are checked in order; the first missing one is reported.
func RequireFields(fields ...string) Guard {
	return func(_ context.Context, req Request) (Verdict, error) {
		for _, f := range fields {
			if _, ok := req.Body[f]; !ok {
				return Verdict{}, missingField(f)
			}
		}
		return Verdict{}, nil
	}
}
