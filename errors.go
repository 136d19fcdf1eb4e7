package vpnurl

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScheme     = errors.New("vpnurl: token does not start with " + Prefix)
	ErrInvalidEncoding   = errors.New("vpnurl: invalid base64url body")
	ErrTruncatedHeader   = errors.New("vpnurl: body shorter than length header")
	ErrDecompression     = errors.New("vpnurl: malformed compressed payload")
	ErrIntegrityMismatch = errors.New("vpnurl: decompressed length does not match header")
	ErrInvalidUTF8       = errors.New("vpnurl: payload is not valid UTF-8")
	ErrInvalidDocument   = errors.New("vpnurl: payload is not a valid document")
	ErrLengthOverflow    = errors.New("vpnurl: serialized document exceeds 4 GiB length field")
	ErrDecodeFailed      = errors.New("vpnurl: token matches neither the compressed nor the legacy format")

	ErrUnsupportedAlgorithm = errors.New("vpnurl: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("vpnurl: invalid compression level")
)

// DecodeError is returned by Decode when every format fails. It keeps the
// failure of each attempt; errors.Is matches ErrDecodeFailed as well as the
// sentinel behind either attempt.
type DecodeError struct {
	Modern error
	Legacy error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v (compressed: %v; legacy: %v)", ErrDecodeFailed, e.Modern, e.Legacy)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecodeFailed, e.Modern, e.Legacy}
}
