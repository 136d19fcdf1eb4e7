// Package vpnurl packs a structured configuration document into a compact
// vpn:// token that can be pasted into a URL, QR code or chat message, and
// unpacks it again.
//
// # Token format
//
// A token is the literal prefix "vpn://" followed by URL-safe base64 without
// padding. The decoded body is
//
//	[4-byte big-endian length][zlib stream of the JSON text]
//
// where the length is the byte count of the uncompressed JSON. Decoding
// checks that the inflated payload has exactly that length.
//
// Tokens written by older encoders carry the JSON text directly, with no
// header and no compression. Decode tries the compressed layout first and
// falls back to the raw layout when that fails for any reason, so both kinds
// decode transparently.
//
// # Quick Start
//
//	config, _ := document.Parse([]byte(`{"server":"example.com","port":8080}`))
//
//	token, err := vpnurl.Encode(config)
//	// token == "vpn://AAAA..."
//
//	decoded, err := vpnurl.Decode(token)
//
// # Errors
//
// Decode fails immediately with ErrInvalidScheme or ErrInvalidEncoding when
// the token itself is malformed. Otherwise the error is a *DecodeError
// holding the reason each layout was rejected; errors.Is sees through it to
// ErrTruncatedHeader, ErrDecompression, ErrIntegrityMismatch, ErrInvalidUTF8
// and ErrInvalidDocument.
//
// # Compression algorithms
//
// Tokens always use zlib. The package also carries gzip, zstd, lz4, brotli
// and snappy through CompressBytes and CompareAlgorithms, which the vpnurl
// command uses to report how large a token would be under each of them.
//
// Encode and Decode keep no state and are safe for concurrent use.
package vpnurl
