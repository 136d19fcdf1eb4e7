package vpnurl

import (
	"bytes"
	"fmt"
	"io"
)

// CompressBytes compresses a byte slice using the specified algorithm and level
func CompressBytes(data []byte, algo Algorithm, level int) ([]byte, error) {
	var buf bytes.Buffer

	compressor, err := createCompressor(algo, &buf, level)
	if err != nil {
		return nil, err
	}

	if _, err := compressor.Write(data); err != nil {
		compressor.Close()
		return nil, err
	}

	if err := compressor.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecompressBytes decompresses a byte slice using the specified algorithm
func DecompressBytes(data []byte, algo Algorithm) ([]byte, error) {
	decompressor, err := createDecompressor(algo, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	return io.ReadAll(decompressor)
}

// decompressAtMost is DecompressBytes that stops after limit bytes of
// output, so a payload claiming a small length cannot inflate without bound.
func decompressAtMost(data []byte, algo Algorithm, limit int64) ([]byte, error) {
	decompressor, err := createDecompressor(algo, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer decompressor.Close()

	return io.ReadAll(io.LimitReader(decompressor, limit))
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
// E.g., 0.5 means the compressed size is 50% of the original
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the compression percentage
// Returns the percentage of space saved (0-100)
// E.g., 50 means 50% space savings
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}

// Comparison is the outcome of compressing one document text with one
// algorithm.
type Comparison struct {
	Algorithm      Algorithm `json:"algorithm"`
	OriginalSize   int       `json:"original_size"`
	CompressedSize int       `json:"compressed_size"`
	// TokenLength is the length of a token carrying this payload behind
	// the usual header.
	TokenLength int     `json:"token_length"`
	Ratio       float64 `json:"ratio"`
}

// CompareAlgorithms compresses text with every algorithm at its default
// level. Tokens always use zlib; the other rows only show what a different
// algorithm would have cost.
func CompareAlgorithms(text []byte) ([]Comparison, error) {
	results := make([]Comparison, 0, len(Algorithms))
	for _, algo := range Algorithms {
		compressed, err := CompressBytes(text, algo, 0)
		if err != nil {
			return nil, fmt.Errorf("vpnurl: compare %s: %w", algo, err)
		}
		results = append(results, Comparison{
			Algorithm:      algo,
			OriginalSize:   len(text),
			CompressedSize: len(compressed),
			TokenLength:    tokenLength(HeaderSize + len(compressed)),
			Ratio:          GetCompressionRatio(int64(len(text)), int64(len(compressed))),
		})
	}
	return results, nil
}

func tokenLength(bodySize int) int {
	return len(Prefix) + bodyEncoding.EncodedLen(bodySize)
}
