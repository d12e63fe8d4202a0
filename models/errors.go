package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind классифицирует ошибки конвейера и хранилища.
// По виду ошибки HTTP-слой выбирает код ответа.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindConnection
	KindNoData
	KindInsufficientData
	KindModelInputShape
	KindInvalidInput
)

// String возвращает имя вида ошибки
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindNoData:
		return "NoDataError"
	case KindInsufficientData:
		return "InsufficientDataError"
	case KindModelInputShape:
		return "ModelInputShapeError"
	case KindInvalidInput:
		return "InvalidInputError"
	default:
		return "InternalError"
	}
}

// Сигнальные значения для errors.Is
var (
	ErrConnection       = &Error{Kind: KindConnection}
	ErrNoData           = &Error{Kind: KindNoData}
	ErrInsufficientData = &Error{Kind: KindInsufficientData}
	ErrModelInputShape  = &Error{Kind: KindModelInputShape}
	ErrInvalidInput     = &Error{Kind: KindInvalidInput}
)

// Error единый тип ошибки, который проходит через все слои без изменений
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по виду, чтобы errors.Is(err, ErrNoData) работал для любой ошибки этого вида
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf возвращает вид ошибки; для ошибок без тега возвращается KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NoData создает ошибку отсутствия данных
func NoData(op, format string, args ...interface{}) error {
	return &Error{Kind: KindNoData, Op: op, Message: fmt.Sprintf(format, args...)}
}

// InsufficientData создает ошибку недостаточного количества данных
func InsufficientData(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInsufficientData, Op: op, Message: fmt.Sprintf(format, args...)}
}

// ModelInputShape создает ошибку несоответствия формы входа модели
func ModelInputShape(op string, want, got int) error {
	return &Error{
		Kind:    KindModelInputShape,
		Op:      op,
		Message: fmt.Sprintf("модель ожидает %d признаков, получено %d", want, got),
	}
}

// InvalidInput создает ошибку некорректного параметра запроса
func InvalidInput(op, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Connection оборачивает ошибку недоступности хранилища
func Connection(op string, err error) error {
	return &Error{Kind: KindConnection, Op: op, Message: "хранилище недоступно", Err: err}
}
