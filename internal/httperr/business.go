package httperr

import (
	"errors"
	"fmt"
)

// BusinessError is a rule violation the caller can act on: an invalid
// transition, bad input, a limit reached.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// NotFoundError covers rows that do not exist and rows owned by another salon.
type NotFoundError struct {
	Code string
}

func (e NotFoundError) Error() string {
	return e.Code
}

func ErrNotFound(code string) error {
	return NotFoundError{Code: code}
}

func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// StorageError wraps a failed persistence call. The engine never retries it.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e StorageError) Unwrap() error {
	return e.Err
}

func ErrStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se StorageError
	if errors.As(err, &se) {
		return err
	}
	return StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var se StorageError
	return errors.As(err, &se)
}

// IsKnown reports whether err is a business or not-found error.
func IsKnown(err error) bool {
	var (
		be BusinessError
		nf NotFoundError
	)
	return errors.As(err, &be) || errors.As(err, &nf)
}
