package vpnurl

import (
	"bytes"
	"errors"
	"strings"

	"github.com/vpnurl/vpnurl/document"
)

// Magic bytes for compression format detection. zlib has no fixed magic and
// is recognised by isZlibHeader instead.
var magicBytes = []struct {
	algo  Algorithm
	magic []byte
}{
	{AlgorithmGzip, []byte{0x1f, 0x8b}},
	{AlgorithmZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{AlgorithmLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{AlgorithmSnappy, []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50}},
}

// IsCompressed checks if data appears to be compressed based on magic bytes.
// Brotli streams carry no magic and are never detected.
func IsCompressed(data []byte) (Algorithm, bool) {
	for _, m := range magicBytes {
		if bytes.HasPrefix(data, m.magic) {
			return m.algo, true
		}
	}
	if isZlibHeader(data) {
		return AlgorithmZlib, true
	}
	return "", false
}

// isZlibHeader checks the RFC 1950 CMF/FLG pair: deflate method, window no
// larger than 32K, and a header checksum divisible by 31.
func isZlibHeader(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	cmf, flg := data[0], data[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// InputKind classifies free-form input.
type InputKind int

const (
	InputUnrecognized InputKind = iota
	InputWireToken
	InputDocument
)

func (k InputKind) String() string {
	switch k {
	case InputWireToken:
		return "token"
	case InputDocument:
		return "document"
	default:
		return "unrecognized"
	}
}

// DetectInput guesses whether s is a token or document text. It looks for
// the token prefix, then for matching outer brackets, then tries a full
// parse. The answer is a hint for choosing between Encode and Decode and
// says nothing about whether either will succeed.
func DetectInput(s string) InputKind {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, Prefix) {
		return InputWireToken
	}

	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		return InputDocument
	}

	if _, err := document.Parse([]byte(trimmed)); err == nil {
		return InputDocument
	}

	return InputUnrecognized
}

// Anatomy breaks a token down into its parts.
type Anatomy struct {
	TokenLength int `json:"token_length"`
	BodySize    int `json:"body_size"`

	// Format is empty when neither format decodes.
	Format Format `json:"format,omitempty"`

	// Header fields are set whenever the body is long enough to carry a
	// header, even if the token turns out to be legacy.
	HeaderLength   uint32    `json:"header_length"`
	HasHeader      bool      `json:"has_header"`
	PayloadSize    int       `json:"payload_size"`
	PayloadMagic   Algorithm `json:"payload_magic,omitempty"`
	DocumentSize   int       `json:"document_size"`
	Ratio          float64   `json:"ratio"`
	DiscardedError string    `json:"discarded_error,omitempty"`

	Document document.Value `json:"-"`
}

// Inspect decodes token and reports how it is laid out. Scheme and base64
// failures return a nil Anatomy. When neither format decodes, the partial
// Anatomy is returned together with the *DecodeError.
func Inspect(token string) (*Anatomy, error) {
	body, err := decodeBody(token)
	if err != nil {
		return nil, err
	}

	a := &Anatomy{
		TokenLength: len(token),
		BodySize:    len(body),
	}
	if length, err := ReadHeader(body); err == nil {
		a.HasHeader = true
		a.HeaderLength = length
		a.PayloadSize = len(body) - HeaderSize
		a.PayloadMagic, _ = IsCompressed(body[HeaderSize:])
	}

	attempts := resolve(body)
	last := attempts[len(attempts)-1]
	if last.err != nil {
		return a, &DecodeError{Modern: attempts[0].err, Legacy: last.err}
	}

	a.Format = last.format
	a.Document = last.doc
	if len(attempts) > 1 {
		a.DiscardedError = attempts[0].err.Error()
	}

	switch a.Format {
	case FormatModern:
		a.DocumentSize = int(a.HeaderLength)
		a.Ratio = GetCompressionRatio(int64(a.DocumentSize), int64(a.PayloadSize))
	case FormatLegacy:
		a.DocumentSize = len(body)
		a.Ratio = 1
	}
	return a, nil
}

// IsDecodeFailure reports whether err means the token was well-formed base64
// but matched neither format.
func IsDecodeFailure(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}
