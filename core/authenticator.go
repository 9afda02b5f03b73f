package core

import (
	"context"
	"fmt"
	"log"
)

// Operation names an auth state transition.
type Operation string

const (
	OpSignup Operation = "signup"
	OpLogin  Operation = "login"
)

// Authenticator implements signup and login against a credential store and
// per-caller session state. Both stores are owned by the caller.
type Authenticator struct {
	creds    CredentialStore
	sessions SessionState
	guards   GuardChain
}

func NewAuthenticator(creds CredentialStore, sessions SessionState) *Authenticator {
	return &Authenticator{
		creds:    creds,
		sessions: sessions,
		guards: GuardChain{
			SessionShortCircuit(sessions),
			RequireFields(FieldUsername, FieldPassword),
		},
	}
}

// Guards returns the checks that run ahead of every operation.
func (a *Authenticator) Guards() GuardChain { return a.guards }

// Handle runs the guard chain and, unless it halts, the requested operation.
func (a *Authenticator) Handle(ctx context.Context, op Operation, req Request) (Response, error) {
	v, err := a.guards.Run(ctx, req)
	if err != nil {
		return Response{}, err
	}
	if v.Halt {
		return v.Response, nil
	}

	switch op {
	case OpSignup:
		return a.Signup(ctx, req)
	case OpLogin:
		return a.Login(ctx, req)
	default:
		return Response{}, fmt.Errorf("unknown operation %q", op)
	}
}

// Signup creates an account and echoes the request body. It never changes
// session state; the caller still has to log in.
func (a *Authenticator) Signup(ctx context.Context, req Request) (Response, error) {
	cred, err := credentialFrom(req)
	if err != nil {
		return Response{}, err
	}
	log.Printf("signing up user %s", cred.Username)

	exists, err := a.creds.Exists(ctx, cred.Username)
	if err != nil {
		return Response{}, err
	}
	if exists {
		return Response{}, &AuthError{Kind: ErrDuplicateAccount}
	}
	// Put re-checks atomically; a concurrent signup may still win here.
	if err := a.creds.Put(ctx, cred.Username, cred.Password); err != nil {
		return Response{}, err
	}
	return Response{Kind: ResponseEcho, Body: req.Body}, nil
}

// Login verifies the supplied password and marks the caller authenticated.
func (a *Authenticator) Login(ctx context.Context, req Request) (Response, error) {
	cred, err := credentialFrom(req)
	if err != nil {
		return Response{}, err
	}
	log.Printf("logging in user %s", cred.Username)

	stored, ok, err := a.creds.Get(ctx, cred.Username)
	if err != nil {
		return Response{}, err
	}
	if !ok {
		return Response{}, &AuthError{Kind: ErrAccountNotFound}
	}
	if stored.Password != cred.Password {
		return Response{}, &AuthError{Kind: ErrPasswordMismatch}
	}

	if err := a.sessions.SetAuthenticated(ctx, req.CallerID, stored); err != nil {
		return Response{}, err
	}
	return Response{Kind: ResponseEcho, Body: req.Body}, nil
}

func credentialFrom(req Request) (Credential, error) {
	username, err := stringField(req.Body, FieldUsername)
	if err != nil {
		return Credential{}, err
	}
	password, err := stringField(req.Body, FieldPassword)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Username: username, Password: password}, nil
}

func stringField(body map[string]any, field string) (string, error) {
	v, ok := body[field]
	if !ok {
		return "", missingField(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidField(field)
	}
	return s, nil
}
