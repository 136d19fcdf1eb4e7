package vpnurl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the length of the big-endian length prefix carried by the
// compressed format.
const HeaderSize = 4

// MaxDocumentLength is the largest serialized document the header can record.
const MaxDocumentLength = math.MaxUint32

// CreateHeader encodes length as the 4-byte big-endian header.
func CreateHeader(length uint32) [HeaderSize]byte {
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[:], length)
	return header
}

// ReadHeader decodes the length recorded in the first HeaderSize bytes of b.
func ReadHeader(b []byte) (uint32, error) {
	if len(b) < HeaderSize {
		return 0, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedHeader, len(b), HeaderSize)
	}
	return binary.BigEndian.Uint32(b[:HeaderSize]), nil
}

// headerLength converts a byte count to the header field, refusing values
// the field cannot hold instead of truncating them.
func headerLength(n uint64) (uint32, error) {
	if n > MaxDocumentLength {
		return 0, fmt.Errorf("%w: %d bytes", ErrLengthOverflow, n)
	}
	return uint32(n), nil
}
