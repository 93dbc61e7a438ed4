package tastebase

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions the HTTP boundary needs to classify.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("invalid input")
	ErrAlreadyExists = errors.New("already exists")
	ErrUpstream      = errors.New("upstream request failed")
)

// StoreError wraps any failure from the underlying store. No operation in the
// core recovers from one; it is passed through to the boundary unchanged and
// surfaced as a 500.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrorWithContext adds structured context to errors for logging.
type ErrorWithContext struct {
	Err     error
	Context map[string]interface{}
}

func (e *ErrorWithContext) Error() string {
	if len(e.Context) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (context: %+v)", e.Err, e.Context)
}

func (e *ErrorWithContext) Unwrap() error {
	return e.Err
}

// WithContext adds context to an error.
func WithContext(err error, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ErrorWithContext{Err: err, Context: context}
}

// IsNotFound checks if an error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a bad-input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict checks if an error is a duplicate-restaurant conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsUpstream checks if an error came from the weather provider.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsStore checks if an error came from the underlying store.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
