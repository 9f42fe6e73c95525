package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeDuplicate     ErrorCode = "DUPLICATE"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// с сентинелами даже после Wrap.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation короткая форма для ошибок валидации входных данных.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для посторонних ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

func IsDuplicate(err error) bool {
	return CodeOf(err) == ErrCodeDuplicate
}

var (
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrFreelancerNotFound = New(ErrCodeNotFound, "фрилансер не найден")
	ErrListingNotFound    = New(ErrCodeNotFound, "заказ не найден")
	ErrChatNotFound       = New(ErrCodeNotFound, "чат не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")
	ErrInvalidToken       = New(ErrCodeUnauthorized, "невалидный токен")

	ErrClientOnly     = New(ErrCodeForbidden, "действие доступно только заказчикам")
	ErrFreelancerOnly = New(ErrCodeForbidden, "действие доступно только фрилансерам")
	ErrNotOwner       = New(ErrCodeForbidden, "только автор заказа может выполнить это действие")
	ErrNotParticipant = New(ErrCodeForbidden, "вы не являетесь участником чата")

	ErrUsernameTaken   = New(ErrCodeDuplicate, "имя пользователя уже занято")
	ErrEmailTaken      = New(ErrCodeDuplicate, "email уже используется")
	ErrDuplicateReview = New(ErrCodeDuplicate, "вы уже оставили отзыв этому фрилансеру")
	ErrSlugTaken       = New(ErrCodeDuplicate, "slug уже занят")

	ErrListingNotOpen    = New(ErrCodeConflict, "заказ уже не открыт")
	ErrListingTaken      = New(ErrCodeConflict, "у заказа уже есть исполнитель")
	ErrListingClosed     = New(ErrCodeConflict, "заказ закрыт")
	ErrNoInterest        = New(ErrCodeConflict, "фрилансер не откликался на этот заказ")
	ErrUnknownRole       = New(ErrCodeConfiguration, "роль пользователя не определена")
	ErrInvalidTransition = New(ErrCodeConflict, "недопустимый переход статуса заказа")
)
