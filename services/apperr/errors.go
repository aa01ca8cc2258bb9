// Package apperr defines the failures the engine surfaces to callers. Every
// error carries a Kind (how the boundary should treat it), a stable Code and
// a message telling the user why the request was refused.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindPrecondition
	KindConflict
	KindInvalid
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindPrecondition:
		return "PreconditionFailed"
	case KindConflict:
		return "Conflict"
	case KindInvalid:
		return "Invalid"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "Internal"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so that errors.Is(NotFound("Exam"), ErrNotFound) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeExamLocked        = "EXAM_LOCKED"
	CodeAttemptsExhausted = "ATTEMPTS_EXHAUSTED"
	CodeAlreadyCertified  = "ALREADY_CERTIFIED"
	CodeNotEligible       = "NOT_ELIGIBLE"
	CodeExamExists        = "EXAM_EXISTS"
	CodeAttemptConflict   = "ATTEMPT_CONFLICT"
	CodeDuplicate         = "DUPLICATE"
	CodeInvalid           = "INVALID"
	CodeBadCredentials    = "INVALID_CREDENTIALS"
	CodeAccountInactive   = "ACCOUNT_NOT_ACTIVE"
	CodeWrongPassword     = "WRONG_PASSWORD"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeSelfAction        = "SELF_ACTION"
)

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "Not found!"}
	ErrForbidden         = &Error{Kind: KindForbidden, Code: CodeForbidden, Message: "You do not have access to this resource!"}
	ErrExamLocked        = &Error{Kind: KindPrecondition, Code: CodeExamLocked, Message: "Watch every episode of the season before taking the exam!"}
	ErrAttemptsExhausted = &Error{Kind: KindPrecondition, Code: CodeAttemptsExhausted, Message: "You have used all attempts for this exam!"}
	ErrAlreadyCertified  = &Error{Kind: KindPrecondition, Code: CodeAlreadyCertified, Message: "You already passed this exam!"}
	ErrNotEligible       = &Error{Kind: KindPrecondition, Code: CodeNotEligible, Message: "Certificates are only available for passing attempts!"}
	ErrExamExists        = &Error{Kind: KindConflict, Code: CodeExamExists, Message: "This season already has an exam!"}
	ErrAttemptConflict   = &Error{Kind: KindConflict, Code: CodeAttemptConflict, Message: "Another submission was recorded at the same time, please retry!"}
	ErrDuplicate         = &Error{Kind: KindConflict, Code: CodeDuplicate, Message: "Record already exists!"}
	ErrInvalid           = &Error{Kind: KindInvalid, Code: CodeInvalid, Message: "Invalid input!"}
	ErrBadCredentials    = &Error{Kind: KindUnauthorized, Code: CodeBadCredentials, Message: "Invalid credentials!"}
	ErrAccountInactive   = &Error{Kind: KindForbidden, Code: CodeAccountInactive, Message: "Your account is not active yet!"}
	ErrWrongPassword     = &Error{Kind: KindUnauthorized, Code: CodeWrongPassword, Message: "Current password is incorrect!"}
	ErrInvalidToken      = &Error{Kind: KindUnauthorized, Code: CodeInvalidToken, Message: "Invalid or expired token!"}
	ErrResetLinkInvalid  = &Error{Kind: KindInvalid, Code: CodeInvalidToken, Message: "This reset link is invalid or has expired!"}
	ErrSelfAction        = &Error{Kind: KindInvalid, Code: CodeSelfAction, Message: "You cannot do this to your own account!"}
)

// NotFound names the missing entity, e.g. NotFound("Episode").
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: entity + " not found!"}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: CodeDuplicate, Message: message}
}

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Code: CodeInvalid, Message: message}
}

// Wrap attaches a cause to a copy of e.
func Wrap(e *Error, cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// KindOf reports the Kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
