package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeNetwork      ErrorType = "NETWORK"
	ErrTypeStorageRead  ErrorType = "STORAGE_READ"
	ErrTypeStorageWrite ErrorType = "STORAGE_WRITE"
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
)

// DomainError is the typed error used across the module. Callers branch on Type,
// never on the message text.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if stderrors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Validation(message string, err error) *DomainError {
	return New(ErrTypeValidation, message, err)
}

func Network(message string, err error) *DomainError {
	return New(ErrTypeNetwork, message, err)
}

func StorageRead(message string, err error) *DomainError {
	return New(ErrTypeStorageRead, message, err)
}

func StorageWrite(message string, err error) *DomainError {
	return New(ErrTypeStorageWrite, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

// IsType reports whether any error in err's chain is a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var de *DomainError
		if !stderrors.As(err, &de) {
			return false
		}
		if de.Type == errType {
			return true
		}
		err = de.Err
	}
	return false
}
