package vpnurl

import (
	"testing"

	"github.com/vpnurl/vpnurl/document"
)

// generateConfig builds a WireGuard-style document with the given number of
// peers.
func generateConfig(peers int) document.Value {
	items := make([]document.Value, peers)
	for i := range items {
		items[i] = document.Object(
			document.Member{Key: "public_key", Value: document.String("hQ9mXn1uA7pYtO0kGqz3V8cLr5sE2wDfJbN6yKxHiU4=")},
			document.Member{Key: "endpoint", Value: document.String("198.51.100.7:51820")},
			document.Member{Key: "allowed_ips", Value: document.Array(document.String("10.8.0.0/24"), document.String("fd00::/64"))},
			document.Member{Key: "keepalive", Value: document.Int(int64(25 + i%5))},
		)
	}
	return document.Object(
		document.Member{Key: "server", Value: document.String("vpn.example.com")},
		document.Member{Key: "port", Value: document.Int(51820)},
		document.Member{Key: "protocol", Value: document.String("wireguard")},
		document.Member{Key: "peers", Value: document.Array(items...)},
	)
}

func benchmarkEncode(b *testing.B, peers int) {
	doc := generateConfig(peers)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkDecode(b *testing.B, peers int) {
	token, err := Encode(generateConfig(peers))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.SetBytes(int64(len(token)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeSmall(b *testing.B) { benchmarkEncode(b, 1) }
func BenchmarkEncodeLarge(b *testing.B) { benchmarkEncode(b, 256) }
func BenchmarkDecodeSmall(b *testing.B) { benchmarkDecode(b, 1) }
func BenchmarkDecodeLarge(b *testing.B) { benchmarkDecode(b, 256) }

func BenchmarkDecodeLegacy(b *testing.B) {
	text, err := document.Marshal(generateConfig(8))
	if err != nil {
		b.Fatal(err)
	}
	token := Prefix + bodyEncoding.EncodeToString(text)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(token); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark each algorithm on a serialized document
func benchmarkCompress(b *testing.B, algo Algorithm, level int) {
	text, err := document.MarshalIndent(generateConfig(64), Indent)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CompressBytes(text, algo, level); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkZlibCompress(b *testing.B)   { benchmarkCompress(b, AlgorithmZlib, 0) }
func BenchmarkGzipCompress(b *testing.B)   { benchmarkCompress(b, AlgorithmGzip, 0) }
func BenchmarkZstdCompress(b *testing.B)   { benchmarkCompress(b, AlgorithmZstd, 3) }
func BenchmarkLZ4Compress(b *testing.B)    { benchmarkCompress(b, AlgorithmLZ4, 0) }
func BenchmarkBrotliCompress(b *testing.B) { benchmarkCompress(b, AlgorithmBrotli, 6) }
func BenchmarkSnappyCompress(b *testing.B) { benchmarkCompress(b, AlgorithmSnappy, 0) }

func BenchmarkCompareAlgorithms(b *testing.B) {
	text, err := document.MarshalIndent(generateConfig(16), Indent)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := CompareAlgorithms(text); err != nil {
			b.Fatal(err)
		}
	}
}
