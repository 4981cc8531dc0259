// Package errs defines the error kinds shared by the storefront services.
//
// Services wrap causes in *Error so callers can classify a failure with KindOf
// while errors.Is still matches the sentinels below through any wrapping.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

// Error kinds.
const (
	Other Kind = iota
	Validation
	NotFound
	ExternalService
	Persistence
	Unauthorized
	Conflict
	Forbidden
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case ExternalService:
		return "external_service"
	case Persistence:
		return "persistence"
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	case Forbidden:
		return "forbidden"
	default:
		return "other"
	}
}

// Sentinel errors.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingUserID      = errors.New("user id is required")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email or phone already registered")
	ErrGroupFull          = errors.New("group is already complete")
	ErrNotGroupMember     = errors.New("only group members can do that")
)

// Error carries a kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain. Bare
// sentinels are classified by identity.
func KindOf(err error) Kind {
	if err == nil {
		return Other
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != Other {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrMissingUserID):
		return Validation
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrChallengeNotFound), errors.Is(err, ErrGroupNotFound),
		errors.Is(err, ErrOrderNotFound):
		return NotFound
	case errors.Is(err, ErrInvalidCredentials):
		return Unauthorized
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrGroupFull):
		return Conflict
	case errors.Is(err, ErrNotGroupMember):
		return Forbidden
	}
	return Other
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
