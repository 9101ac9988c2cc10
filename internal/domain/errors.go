package domain

import "errors"

// Error kinds returned by the negotiation core. Match them with errors.Is.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrQuantityExceeded  = errors.New("quantity exceeded")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// TransitionError carries the kind of failure plus a human readable reason.
type TransitionError struct {
	Kind   error
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Reason
}

func (e *TransitionError) Unwrap() error { return e.Kind }

func newTransitionError(kind error, reason string) *TransitionError {
	return &TransitionError{Kind: kind, Reason: reason}
}

// InvalidTransition builds an ErrInvalidTransition error.
func InvalidTransition(reason string) error { return newTransitionError(ErrInvalidTransition, reason) }

// Unauthorized builds an ErrUnauthorized error.
func Unauthorized(reason string) error { return newTransitionError(ErrUnauthorized, reason) }

// QuantityExceeded builds an ErrQuantityExceeded error.
func QuantityExceeded(reason string) error { return newTransitionError(ErrQuantityExceeded, reason) }

// InvalidAmount builds an ErrInvalidAmount error.
func InvalidAmount(reason string) error { return newTransitionError(ErrInvalidAmount, reason) }
