package domain

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrOutOfStock         = errors.New("out of stock")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Invalidf membungkus ErrInvalidInput dengan pesan yang bisa ditampilkan ke klien.
func Invalidf(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func NotFoundf(format string, args ...any) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// Unavailable menandai error storage (koneksi putus, timeout) sebagai
// ErrStorageUnavailable tanpa kehilangan penyebab aslinya.
func Unavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &unavailableError{msg: msg, cause: err}
}

type unavailableError struct {
	msg   string
	cause error
}

func (e *unavailableError) Error() string {
	return e.msg + ": " + ErrStorageUnavailable.Error() + ": " + e.cause.Error()
}

func (e *unavailableError) Unwrap() error { return e.cause }

func (e *unavailableError) Is(target error) bool { return target == ErrStorageUnavailable }

// IsTimeout true kalau err berasal dari deadline/cancel context.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
