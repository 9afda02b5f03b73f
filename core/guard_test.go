package core

import (
	"context"
	"errors"
	"testing"
)

func TestGuardChainStopsAtFirstHalt(t *testing.T) {
	calls := 0
	halt := func(context.Context, Request) (Verdict, error) {
		calls++
		return Verdict{Halt: true, Response: welcomeBack("x")}, nil
	}
	never := func(context.Context, Request) (Verdict, error) {
		t.Fatalf("guard after halt must not run")
		return Verdict{}, nil
	}

	v, err := GuardChain{halt, never}.Run(context.Background(), Request{})
	if err != nil || !v.Halt || calls != 1 {
		t.Fatalf("v=%+v err=%v calls=%d", v, err, calls)
	}
}

func TestGuardChainStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	fail := func(context.Context, Request) (Verdict, error) { return Verdict{}, boom }
	never := func(context.Context, Request) (Verdict, error) {
		t.Fatalf("guard after error must not run")
		return Verdict{}, nil
	}

	if _, err := (GuardChain{fail, never}).Run(context.Background(), Request{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}

func TestGuardChainEmptyContinues(t *testing.T) {
	v, err := GuardChain{}.Run(context.Background(), Request{})
	if err != nil || v.Halt {
		t.Fatalf("v=%+v err=%v", v, err)
	}
}

func TestSessionShortCircuit(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemorySessionState()
	guard := SessionShortCircuit(sessions)

	v, err := guard(ctx, Request{CallerID: "c1"})
	if err != nil || v.Halt {
		t.Fatalf("anonymous caller halted: v=%+v err=%v", v, err)
	}

	if err := sessions.SetAuthenticated(ctx, "c1", Credential{Username: "alice", Password: "pw"}); err != nil {
		t.Fatalf("set authenticated: %v", err)
	}
	v, err = guard(ctx, Request{CallerID: "c1"})
	if err != nil || !v.Halt || v.Response.Kind != ResponseWelcome || v.Response.Message != "Welcome back alice" {
		t.Fatalf("v=%+v err=%v", v, err)
	}
}

func TestRequireFieldsPresenceOnly(t *testing.T) {
	guard := RequireFields(FieldUsername, FieldPassword)

	// Empty strings and nulls are present keys.
	v, err := guard(context.Background(), Request{Body: map[string]any{"username": "", "password": nil}})
	if err != nil || v.Halt {
		t.Fatalf("v=%+v err=%v", v, err)
	}

	_, err = guard(context.Background(), Request{Body: nil})
	var ae *AuthError
	if !errors.As(err, &ae) || ae.Field != FieldUsername {
		t.Fatalf("err = %v", err)
	}
}

func TestSetAuthenticatedOverwrites(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemorySessionState()

	_ = sessions.SetAuthenticated(ctx, "c1", Credential{Username: "a"})
	_ = sessions.SetAuthenticated(ctx, "c1", Credential{Username: "b"})
	sess, err := sessions.Read(ctx, "c1")
	if err != nil || sess.Username != "b" {
		t.Fatalf("sess=%+v err=%v", sess, err)
	}
}
