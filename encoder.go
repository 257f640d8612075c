package hxwidget

import (
	"errors"

	"github.com/pthm/hxwidget/lib/encoding"
)

// Encoder is an alias for encoding.Encoder for convenience.
type Encoder = encoding.Encoder

// NewEncoder creates a new encoder with the given key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}

// token is sealed into the p query parameter of every callback URL. It binds
// the request to the behavior and event it was issued for.
type token struct {
	Behavior string `msgpack:"b"`
	Event    string `msgpack:"e"`
}

// wrapEncodingError maps encoding package errors onto hxwidget sentinels.
func wrapEncodingError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, encoding.ErrInvalidFormat) {
		return ErrInvalidFormat
	}
	if errors.Is(err, encoding.ErrSignatureInvalid) {
		return ErrSignatureInvalid
	}
	if errors.Is(err, encoding.ErrDecryptFailed) {
		return ErrDecryptFailed
	}
	return err
}
