package api

import (
	"fmt"
	"net/http"
)

// ErrorKind - типизированный вид ошибки, определяющий HTTP статус
type ErrorKind string

const (
	KindBadRequest          ErrorKind = "BadRequest"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindNotFound            ErrorKind = "NotFound"
	KindConflict            ErrorKind = "Conflict"
	KindInternalServerError ErrorKind = "InternalServerError"
)

var kindStatus = map[ErrorKind]int{
	KindBadRequest:          http.StatusBadRequest,
	KindUnauthorized:        http.StatusUnauthorized,
	KindNotFound:            http.StatusNotFound,
	KindConflict:            http.StatusConflict,
	KindInternalServerError: http.StatusInternalServerError,
}

var kindMessage = map[ErrorKind]string{
	KindBadRequest:          "The request could not be processed",
	KindUnauthorized:        "You are not allowed to perform this action",
	KindNotFound:            "The requested resource does not exist",
	KindConflict:            "The resource conflicts with an existing one",
	KindInternalServerError: "An unexpected error occurred",
}

// HTTPError - ошибка, которую обработчик возвращает для отдачи клиенту.
// Error попадает в поле error конверта, Message - в message.
type HTTPError struct {
	Kind    ErrorKind
	Err     string
	Message string
	Details any
	cause   error
}

func newHTTPError(kind ErrorKind, err string) *HTTPError {
	return &HTTPError{
		Kind:    kind,
		Err:     err,
		Message: kindMessage[kind],
	}
}

func BadRequest(err string, details any) *HTTPError {
	e := newHTTPError(KindBadRequest, err)
	e.Details = details
	return e
}

func Unauthorized(err string) *HTTPError {
	return newHTTPError(KindUnauthorized, err)
}

func NotFound(err string) *HTTPError {
	return newHTTPError(KindNotFound, err)
}

func Conflict(err string) *HTTPError {
	return newHTTPError(KindConflict, err)
}

func InternalServerError(err string) *HTTPError {
	return newHTTPError(KindInternalServerError, err)
}

// WithMessage заменяет пояснение по умолчанию
func (e *HTTPError) WithMessage(message string) *HTTPError {
	e.Message = message
	return e
}

// WithCause сохраняет исходную ошибку для логов; клиенту она не отдается
func (e *HTTPError) WithCause(err error) *HTTPError {
	e.cause = err
	return e
}

// Status возвращает HTTP статус для вида ошибки
func (e *HTTPError) Status() int {
	if status, ok := kindStatus[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Err, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Response собирает конверт ошибки
func (e *HTTPError) Response() *Response {
	return jsonResponse(e.Status(), ErrorEnvelope{
		Success: false,
		Error:   e.Err,
		Message: e.Message,
		Details: e.Details,
	})
}
