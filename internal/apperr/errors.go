// Package apperr defines the error taxonomy shared by every controller:
// authentication, validation, fetch (including timeouts), not-found and
// payment verification failures.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindUnauthenticated
	KindValidation
	KindFetch
	KindTimeout
	KindNotFound
	KindVerification
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindVerification:
		return "verification"
	default:
		return "unknown"
	}
}

// Error is the concrete error type. Two errors match under errors.Is when
// their Kind and Code are equal, so sentinels below can be compared against
// errors built elsewhere with a different message or cause.
type Error struct {
	Kind    Kind
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Auth errors.
var (
	ErrInvalidCredentials    = &Error{Kind: KindAuth, Code: "invalid_credentials", Message: "invalid email or password"}
	ErrSessionExpired        = &Error{Kind: KindAuth, Code: "session_expired", Message: "session expired, please sign in again"}
	ErrDuplicateRegistration = &Error{Kind: KindAuth, Code: "duplicate_registration", Message: "an account with this email already exists"}
	ErrNetworkUnavailable    = &Error{Kind: KindAuth, Code: "network_unavailable", Message: "identity provider unreachable"}
	ErrConfirmationPending   = &Error{Kind: KindAuth, Code: "confirmation_pending", Message: "please confirm your email address, then sign in"}
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated, Code: "unauthenticated", Message: "please sign in to continue"}
)

// Validation errors raised locally before any network call.
var (
	ErrPaymentRequired      = &Error{Kind: KindValidation, Code: "payment_required", Message: "payment required"}
	ErrAlreadyPaid          = &Error{Kind: KindValidation, Code: "already_paid", Message: "booking is already paid"}
	ErrDecoratorInactive    = &Error{Kind: KindValidation, Code: "decorator_inactive", Message: "decorator is not active"}
	ErrAlreadyAssigned      = &Error{Kind: KindValidation, Code: "already_assigned", Message: "booking already has a decorator"}
	ErrBackwardTransition   = &Error{Kind: KindValidation, Code: "backward_transition", Message: "project status can only move forward"}
	ErrUnknownStatus        = &Error{Kind: KindValidation, Code: "unknown_status", Message: "unknown project status"}
	ErrNotAssignedToYou     = &Error{Kind: KindValidation, Code: "not_assigned", Message: "project is not assigned to you"}
	ErrNotCancellable       = &Error{Kind: KindValidation, Code: "not_cancellable", Message: "only pending, unpaid bookings can be cancelled"}
	ErrNotOwner             = &Error{Kind: KindValidation, Code: "not_owner", Message: "booking does not belong to you"}
	ErrConfirmationRequired = &Error{Kind: KindValidation, Code: "confirmation_required", Message: "please confirm this action"}
	ErrNotPromotable        = &Error{Kind: KindValidation, Code: "not_promotable", Message: "only plain users can be promoted"}
	ErrNotDecorator         = &Error{Kind: KindValidation, Code: "not_decorator", Message: "user is not a decorator"}
)

var (
	ErrMalformedReturn = &Error{Kind: KindVerification, Code: "malformed_return", Message: "payment return is missing session or booking id"}
	ErrNotFound        = &Error{Kind: KindNotFound, Code: "not_found", Message: "resource not found"}
	ErrTimeout         = &Error{Kind: KindTimeout, Code: "timeout", Message: "request timed out"}
)

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_field", Field: field, Message: message}
}

func Fetch(code, message string, err error) *Error {
	return &Error{Kind: KindFetch, Code: code, Message: message, Err: err}
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Code: ErrTimeout.Code, Message: ErrTimeout.Message, Err: err}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: ErrNotFound.Code, Message: resource + " not found"}
}

func Verification(message string, err error) *Error {
	return &Error{Kind: KindVerification, Code: "verification_failed", Message: message, Err: err}
}

// Wrap returns a copy of sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	cp := *sentinel
	cp.Err = cause
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldOf returns the offending form field, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "something went wrong, please try again"
}
