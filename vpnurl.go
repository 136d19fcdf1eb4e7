package vpnurl

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vpnurl/vpnurl/document"
)

// Prefix starts every token.
const Prefix = "vpn://"

// Indent is the indentation used when serializing a document for encoding.
const Indent = "  "

var bodyEncoding = base64.RawURLEncoding

// Format identifies which body layout a token was decoded from.
type Format string

const (
	// FormatModern is a length header followed by a zlib stream.
	FormatModern Format = "modern"
	// FormatLegacy is the raw document text written by older encoders.
	FormatLegacy Format = "legacy"
)

// Result describes a successful decode.
type Result struct {
	Document document.Value
	Format   Format

	// Discarded holds the compressed-format failure when the legacy format
	// produced the document, and nil otherwise.
	Discarded error
}

// Encode serializes doc and packs it into a token: the indented JSON text
// is zlib-compressed behind a 4-byte big-endian length header, encoded with
// unpadded URL-safe base64 and prefixed with Prefix. The output is
// deterministic for a given document.
func Encode(doc document.Value) (string, error) {
	text, err := document.MarshalIndent(doc, Indent)
	if err != nil {
		return "", fmt.Errorf("vpnurl: serialize document: %w", err)
	}
	return EncodeText(text)
}

// EncodeText packs already serialized document text into a token. The text
// is not validated.
func EncodeText(text []byte) (string, error) {
	length, err := headerLength(uint64(len(text)))
	if err != nil {
		return "", err
	}

	compressed, err := CompressBytes(text, AlgorithmZlib, 0)
	if err != nil {
		return "", fmt.Errorf("vpnurl: compress: %w", err)
	}

	header := CreateHeader(length)
	body := make([]byte, 0, HeaderSize+len(compressed))
	body = append(body, header[:]...)
	body = append(body, compressed...)

	return Prefix + bodyEncoding.EncodeToString(body), nil
}

// Decode unpacks a token produced by Encode, or by older encoders that
// stored the document text without header or compression.
func Decode(token string) (document.Value, error) {
	result, err := DecodeDetailed(token)
	if err != nil {
		return document.Value{}, err
	}
	return result.Document, nil
}

// DecodeDetailed is Decode that also reports which format matched and what
// went wrong with the compressed format when the legacy one was used.
func DecodeDetailed(token string) (*Result, error) {
	body, err := decodeBody(token)
	if err != nil {
		return nil, err
	}

	attempts := resolve(body)
	for i, a := range attempts {
		if a.err != nil {
			continue
		}
		result := &Result{Document: a.doc, Format: a.format}
		if i > 0 {
			result.Discarded = attempts[0].err
		}
		return result, nil
	}
	return nil, &DecodeError{Modern: attempts[0].err, Legacy: attempts[1].err}
}

// decodeBody checks the scheme and returns the raw body bytes.
func decodeBody(token string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(token, Prefix)
	if !ok {
		return nil, ErrInvalidScheme
	}
	// The base64 decoder skips line breaks; a token never contains them.
	if i := strings.IndexAny(encoded, "\r\n"); i >= 0 {
		return nil, fmt.Errorf("%w: line break at offset %d", ErrInvalidEncoding, i)
	}
	// Unpadded is canonical; tolerate padding added by other tools.
	encoded = strings.TrimRight(encoded, "=")

	body, err := bodyEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncoding, err)
	}
	return body, nil
}

// tier is one interpretation of a decoded body.
type tier struct {
	format Format
	decode func(body []byte) (document.Value, error)
}

// tiers lists the body interpretations in the order they are tried.
var tiers = []tier{
	{format: FormatModern, decode: decodeModern},
	{format: FormatLegacy, decode: decodeLegacy},
}

type attempt struct {
	format Format
	doc    document.Value
	err    error
}

// resolve tries each tier in order and stops at the first success. The
// returned slice always has one entry per tier tried.
func resolve(body []byte) []attempt {
	attempts := make([]attempt, 0, len(tiers))
	for _, t := range tiers {
		doc, err := t.decode(body)
		attempts = append(attempts, attempt{format: t.format, doc: doc, err: err})
		if err == nil {
			break
		}
	}
	return attempts
}

func decodeModern(body []byte) (document.Value, error) {
	expected, err := ReadHeader(body)
	if err != nil {
		return document.Value{}, err
	}

	// Reading one byte past the expected length is enough to detect a
	// payload that is too long.
	text, err := decompressAtMost(body[HeaderSize:], AlgorithmZlib, int64(expected)+1)
	if err != nil {
		return document.Value{}, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	switch {
	case int64(len(text)) > int64(expected):
		return document.Value{}, fmt.Errorf("%w: header says %d bytes, payload is longer",
			ErrIntegrityMismatch, expected)
	case int64(len(text)) < int64(expected):
		return document.Value{}, fmt.Errorf("%w: header says %d bytes, payload has %d",
			ErrIntegrityMismatch, expected, len(text))
	}
	return parseText(text)
}

func decodeLegacy(body []byte) (document.Value, error) {
	return parseText(body)
}

func parseText(text []byte) (document.Value, error) {
	if !utf8.Valid(text) {
		return document.Value{}, ErrInvalidUTF8
	}
	doc, err := document.Parse(text)
	if err != nil {
		return document.Value{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}
