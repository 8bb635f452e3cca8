package util

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// AppError 携带可直接返回给客户端的错误信息
type AppError struct {
	Kind    ErrorKind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is 按错误类别匹配，errors.Is(err, ErrNotFound) 对任意未找到错误都成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAuthorizationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// 仅按类别匹配的错误
var (
	ErrValidation    = &AppError{Kind: KindValidation}
	ErrNotFound      = &AppError{Kind: KindNotFound}
	ErrAuthorization = &AppError{Kind: KindAuthorization}
	ErrConflict      = &AppError{Kind: KindConflict}
)

var (
	ErrUserNotFound       = NewNotFoundError("user not found")
	ErrCourseNotFound     = NewNotFoundError("course not found")
	ErrUnitNotFound       = NewNotFoundError("unit not found")
	ErrPageNotFound       = NewNotFoundError("page not found")
	ErrAssessmentNotFound = NewNotFoundError("assessment not found")
	ErrQuizNotFound       = NewNotFoundError("quiz not found")
	ErrEmailRegistered    = NewConflictError("email already registered")
	ErrInvalidCredentials = NewValidationError("invalid email or password")
	ErrCourseAccessDenied = NewAuthorizationError("you do not have access to this course")
	ErrUnitLimitReached   = NewValidationError("course already has the maximum number of units for its structure")
	ErrUnauthorized       = errors.New("unauthorized")
)

func KindOf(err error) (ErrorKind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}
