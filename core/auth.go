package core

import (
	"errors"
	"fmt"
)

// Credential is a username/password pair identifying one account.
// Passwords are stored and compared as given.
type Credential struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Session is the authentication state of one caller.
// The zero value is an anonymous session. An empty Username is a valid
// account name, so LoggedIn alone decides the state.
type Session struct {
	Username string
	LoggedIn bool
}

// Authenticated reports whether the session belongs to a logged-in user.
func (s Session) Authenticated() bool { return s.LoggedIn }

// Request fields consumed by Signup and Login.
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

var (
	// ErrMissingField is returned when a required body key is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField is returned when a required body key is not a string.
	ErrInvalidField = errors.New("invalid field")
	// ErrDuplicateAccount is returned when signing up an existing username.
	ErrDuplicateAccount = errors.New("duplicate account")
	// ErrAccountNotFound is returned when logging in with an unknown username.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPasswordMismatch is returned when the supplied password differs from the stored one.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrStoreUnavailable wraps infrastructure failures of the credential or session store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AuthError is a client-visible rejection produced by the guard chain or the
// auth operations. Kind is one of the sentinel errors above.
type AuthError struct {
	Kind  error
	Field string
}

func (e *AuthError) Error() string {
	if e.Field == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Field)
}

func (e *AuthError) Unwrap() error { return e.Kind }

// Message returns the human-readable text shown to the caller.
func (e *AuthError) Message() string {
	switch e.Kind {
	case ErrMissingField:
		return fmt.Sprintf("You must specify '%s'", e.Field)
	case ErrInvalidField:
		return fmt.Sprintf("'%s' must be a string", e.Field)
	case ErrDuplicateAccount:
		return "Username already exists"
	case ErrAccountNotFound:
		return "Please signup before trying to login."
	case ErrPasswordMismatch:
		return "Passwords do not match."
	default:
		return e.Kind.Error()
	}
}

func missingField(field string) error { return &AuthError{Kind: ErrMissingField, Field: field} }

func invalidField(field string) error { return &AuthError{Kind: ErrInvalidField, Field: field} }

// storeError marks err as an infrastructure failure while keeping it inspectable.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
