package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки уровня хранилища
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrConflict используется при нарушении уникальности (например, email пользователя).
	ErrConflict = errors.New("resource state conflict")
)

// Kind — закрытый набор видов ошибок приложения.
// Граница HTTP обязана обработать каждый вид (см. response.Error).
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
)

// String возвращает машинный код вида ошибки
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// FieldError описывает ошибку валидации конкретного поля
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error — типизированная ошибка приложения
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation создает ошибку валидации с деталями по полям
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

// NotFound создает ошибку "не найдено"
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: ErrNotFound}
}

// Forbidden создает ошибку отказа в доступе
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Unauthorized создает ошибку отсутствия аутентификации
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Authentication required"}
}

// Internal оборачивает непредвиденную ошибку (хранилище, сеть и т.д.)
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf возвращает вид ошибки. Нетипизированные ошибки считаются внутренними.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As извлекает *Error из цепочки ошибок
func As(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}
