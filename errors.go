package hxwidget

import (
	"errors"
	"fmt"
)

// Sentinel errors for widget callbacks.
var (
	ErrNotFound         = errors.New("hxwidget: resource not found")
	ErrDecryptFailed    = errors.New("hxwidget: token decryption failed")
	ErrSignatureInvalid = errors.New("hxwidget: signature verification failed")
	ErrInvalidFormat    = errors.New("hxwidget: invalid token format")
	ErrMalformedRequest = errors.New("hxwidget: malformed request")
	ErrUnknownEvent     = errors.New("hxwidget: no dispatch arm for event")
	ErrUnrecognizedView = errors.New("hxwidget: unrecognized view")
	ErrInvalidParameter = errors.New("hxwidget: invalid callback parameter")
)

// MalformedError reports a callback parameter that was missing or failed
// type conversion. It matches ErrMalformedRequest with errors.Is.
type MalformedError struct {
	Param string
	Value string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("hxwidget: malformed request: parameter %q missing", e.Param)
	}
	return fmt.Sprintf("hxwidget: malformed request: parameter %q=%q: %v", e.Param, e.Value, e.Err)
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedRequest
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// IsMalformed checks if err reports a bad callback parameter.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedRequest)
}

// IsBadRequest reports whether err should be answered with 400.
func IsBadRequest(err error) bool {
	return IsMalformed(err) || IsDecryptionError(err) || errors.Is(err, ErrInvalidFormat)
}

// UnknownEventError reports a decoded event with no dispatch arm.
func UnknownEventError(ev any) error {
	return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
}
