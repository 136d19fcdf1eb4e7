package commands

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpnurl/vpnurl"
	"github.com/vpnurl/vpnurl/document"
	"github.com/vpnurl/vpnurl/internal/cli"
	"github.com/vpnurl/vpnurl/internal/vfs"
)

const sampleJSON = `{"server":"example.com","port":8080}`

const samplePretty = "{\n  \"server\": \"example.com\",\n  \"port\": 8080\n}"

type harness struct {
	stdin  string
	vars   map[string]string
	fs     *vfs.MemFS
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness() *harness {
	return &harness{
		vars: map[string]string{},
		fs:   vfs.NewMemFS(),
	}
}

// run executes a fresh command tree, as main would.
func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	env := &Env{
		Stdin:  strings.NewReader(h.stdin),
		Stdout: &h.stdout,
		Stderr: &h.stderr,
		FS:     h.fs,
		Getenv: func(key string) string { return h.vars[key] },
	}
	return Root(env).Execute(args)
}

func sampleToken(t *testing.T) string {
	t.Helper()
	doc, err := document.Parse([]byte(sampleJSON))
	require.NoError(t, err)
	token, err := vpnurl.Encode(doc)
	require.NoError(t, err)
	return token
}

func legacyToken(text string) string {
	return vpnurl.Prefix + base64.RawURLEncoding.EncodeToString([]byte(text))
}

// decodedOutput decodes a token printed on stdout.
func decodedOutput(t *testing.T, out string) document.Value {
	t.Helper()
	require.True(t, strings.HasSuffix(out, "\n"), "stdout output ends with a newline")
	doc, err := vpnurl.Decode(strings.TrimSuffix(out, "\n"))
	require.NoError(t, err)
	return doc
}

func TestAutodetectEncodeFromArgs(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(sampleJSON))

	want, _ := document.Parse([]byte(sampleJSON))
	assert.True(t, document.Equal(want, decodedOutput(t, h.stdout.String())))
	assert.Equal(t, sampleToken(t)+"\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "input is a document, encoding")
}

func TestAutodetectJoinsArgs(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run(`{"server":`, `"example.com",`, `"port":8080}`))

	assert.Equal(t, sampleToken(t)+"\n", h.stdout.String())
}

func TestAutodetectDecodeFromStdin(t *testing.T) {
	h := newHarness()
	h.stdin = "\n  " + sampleToken(t) + "  \n\n"

	require.NoError(t, h.run())

	assert.Equal(t, samplePretty+"\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "input is a vpn:// token, decoding")
}

func TestAutodetectUnrecognized(t *testing.T) {
	h := newHarness()

	err := h.run("hello", "world")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use -e to encode or -d to decode")
	assert.Empty(t, h.stdout.String())
}

func TestAutodetectEmptyInput(t *testing.T) {
	h := newHarness()

	err := h.run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not determine the input type")
}

func TestEncodeAndDecodeFlagsConflict(t *testing.T) {
	h := newHarness()

	err := h.run("-e", "-d", sampleJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestExplicitModes(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("-e", `"just a string"`))
	token := strings.TrimSuffix(h.stdout.String(), "\n")

	require.NoError(t, h.run("--decode", token))
	assert.Equal(t, `"just a string"`+"\n", h.stdout.String())
	assert.NotContains(t, h.stderr.String(), "decoding")
}

func TestFileInputAndOutput(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("client.json", sampleJSON)

	require.NoError(t, h.run("-i", "client.json", "-o", "token.txt"))

	token, ok := h.fs.ReadString("token.txt")
	require.True(t, ok)
	assert.Equal(t, sampleToken(t), token, "file output has no trailing newline")
	assert.Empty(t, h.stdout.String())

	require.NoError(t, h.run("-i", "token.txt", "-o", "decoded.json"))

	decoded, ok := h.fs.ReadString("decoded.json")
	require.True(t, ok)
	assert.Equal(t, samplePretty, decoded)
}

func TestMissingInputFile(t *testing.T) {
	h := newHarness()

	err := h.run("-i", "missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read missing.json")
}

func TestInputDirectory(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	env := &Env{
		Stdin:  strings.NewReader(""),
		Stdout: &stdout,
		Stderr: &stderr,
		FS:     vfs.OS(),
		Getenv: func(string) string { return "" },
	}

	err := Root(env).Execute([]string{"-i", dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
	assert.Empty(t, stdout.String())

	path := filepath.Join(dir, "client.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))
	require.NoError(t, Root(env).Execute([]string{"-i", path}))
	assert.Equal(t, sampleToken(t)+"\n", stdout.String())
}

func TestDecodeSubcommand(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("decode", sampleToken(t)))
	assert.Equal(t, samplePretty+"\n", h.stdout.String())
}

func TestDecodeLegacyToken(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("decode", "-v", legacyToken(sampleJSON)))

	assert.Equal(t, samplePretty+"\n", h.stdout.String())
	assert.Contains(t, h.stderr.String(), "compressed layout rejected")
	assert.Contains(t, h.stderr.String(), `"format":"legacy"`)
}

func TestDecodeYAMLOutput(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("decode", "--output-format", "yaml", sampleToken(t)))

	assert.Equal(t, "server: example.com\nport: 8080\n", h.stdout.String())
}

func TestDecodeFailure(t *testing.T) {
	h := newHarness()

	err := h.run("decode", legacyToken("not json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, vpnurl.ErrDecodeFailed)
	assert.ErrorIs(t, err, vpnurl.ErrInvalidDocument)
	assert.Empty(t, h.stdout.String())
}

func TestDecodeInvalidToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"wrong scheme", "https://example.com", vpnurl.ErrInvalidScheme},
		{"bad base64", "vpn://not*base64", vpnurl.ErrInvalidEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			err := h.run("decode", tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeInputFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
	}{
		{"json", "json", sampleJSON},
		{"jsonc", "jsonc", "{\n  // endpoint\n  \"server\": \"example.com\",\n  \"port\": 8080, /* udp */\n}"},
		{"yaml", "yaml", "server: example.com\nport: 8080\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.stdin = tt.input

			require.NoError(t, h.run("encode", "--input-format", tt.format))
			assert.Equal(t, sampleToken(t)+"\n", h.stdout.String())
		})
	}
}

func TestEncodeTOMLSortsKeys(t *testing.T) {
	h := newHarness()
	h.stdin = "server = \"example.com\"\nport = 8080\n"

	require.NoError(t, h.run("encode", "--input-format", "toml"))

	doc := decodedOutput(t, h.stdout.String())
	members := doc.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "port", members[0].Key)
	assert.Equal(t, "server", members[1].Key)
}

func TestDecodeTOMLOutput(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("decode", "--output-format", "toml", sampleToken(t)))
	out := h.stdout.String()
	assert.Regexp(t, `server = ['"]example\.com['"]`, out)
	assert.Contains(t, out, "port = 8080")

	err := h.run("decode", "--output-format", "toml", legacyToken(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format toml output")
}

func TestAutodetectWithExplicitInputFormat(t *testing.T) {
	h := newHarness()
	h.stdin = "server: example.com\nport: 8080\n"

	require.NoError(t, h.run("--input-format", "yaml"))
	assert.Equal(t, sampleToken(t)+"\n", h.stdout.String())
}

func TestEncodeRejectsComments(t *testing.T) {
	h := newHarness()
	h.stdin = "{\"server\": \"example.com\" // primary\n}"

	err := h.run("encode")
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse auto input")
}

func TestInvalidInputFormat(t *testing.T) {
	h := newHarness()

	err := h.run("encode", "--input-format", "xml", sampleJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input-format")
}

func TestConfigFromEnvironment(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("/etc/vpnurl.yaml", "output:\n  indent: 4\ninput:\n  comments: true\n")
	h.vars["VPNURL_CONFIG"] = "/etc/vpnurl.yaml"

	require.NoError(t, h.run("decode", sampleToken(t)))
	assert.Equal(t, "{\n    \"server\": \"example.com\",\n    \"port\": 8080\n}\n", h.stdout.String())

	// input.comments lets auto input carry JSONC.
	h.stdin = "{\"server\": \"example.com\", // primary\n\"port\": 8080}"
	require.NoError(t, h.run("encode"))
	assert.Equal(t, sampleToken(t)+"\n", h.stdout.String())
}

func TestConfigFlagOverridesEnvironment(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("env.yaml", "output:\n  format: yaml\n")
	h.fs.WriteString("flag.yaml", "output:\n  indent: 0\n")
	h.vars["VPNURL_CONFIG"] = "env.yaml"

	require.NoError(t, h.run("decode", "--config", "flag.yaml", sampleToken(t)))
	assert.Equal(t, sampleJSON+"\n", h.stdout.String())
}

func TestOutputFormatFlagOverridesConfig(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("vpnurl.yaml", "output:\n  format: yaml\n")

	require.NoError(t, h.run("decode", "--config", "vpnurl.yaml", "--output-format", "json", sampleToken(t)))
	assert.Equal(t, samplePretty+"\n", h.stdout.String())
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("vpnurl.yaml", "output:\n  colour: red\n")

	err := h.run("decode", "--config", "vpnurl.yaml", sampleToken(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLogLevelFromConfig(t *testing.T) {
	h := newHarness()
	h.fs.WriteString("quiet.yaml", "log:\n  level: error\n")

	require.NoError(t, h.run("--config", "quiet.yaml", sampleJSON))
	assert.Empty(t, h.stderr.String())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     string
		exitCode int
	}{
		{"token", "vpn://AAAA", "token", 0},
		{"object", sampleJSON, "document", 0},
		{"scalar", "42", "document", 0},
		{"garbage", "hello", "unrecognized", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.stdin = tt.input

			err := h.run("detect")
			assert.Equal(t, tt.want+"\n", h.stdout.String())
			if tt.exitCode == 0 {
				assert.NoError(t, err)
				return
			}
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tt.exitCode, exitErr.ExitCode())
		})
	}
}

func TestInspectText(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("inspect", sampleToken(t)))

	out := h.stdout.String()
	assert.Contains(t, out, "token length")
	assert.Contains(t, out, "payload magic   zlib")
	assert.Contains(t, out, "format          modern")
	assert.NotContains(t, out, "ALGORITHM")
}

func TestInspectCompare(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("inspect", "--compare", sampleToken(t)))

	out := h.stdout.String()
	assert.Contains(t, out, "ALGORITHM")
	for _, algo := range vpnurl.Algorithms {
		assert.Contains(t, out, string(algo))
	}
}

func TestInspectJSON(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("inspect", "--json", "--compare", sampleToken(t)))

	var report struct {
		Format     string          `json:"format"`
		HasHeader  bool            `json:"has_header"`
		Document   json.RawMessage `json:"document"`
		Comparison []struct {
			Algorithm string `json:"algorithm"`
		} `json:"comparison"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &report))

	assert.Equal(t, "modern", report.Format)
	assert.True(t, report.HasHeader)
	assert.JSONEq(t, sampleJSON, string(report.Document))
	require.Len(t, report.Comparison, len(vpnurl.Algorithms))
	assert.Equal(t, "zlib", report.Comparison[0].Algorithm)
}

func TestInspectLegacy(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("inspect", legacyToken(sampleJSON)))

	out := h.stdout.String()
	assert.Contains(t, out, "legacy")
	assert.Contains(t, out, "compressed layout rejected")
}

func TestInspectUndecodable(t *testing.T) {
	h := newHarness()

	err := h.run("inspect", "--json", legacyToken("not json"))
	require.Error(t, err)
	assert.True(t, vpnurl.IsDecodeFailure(err))

	var report map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &report))
	assert.NotEmpty(t, report["error"])
	assert.NotContains(t, report, "document")
}

func TestInspectBadScheme(t *testing.T) {
	h := newHarness()

	err := h.run("inspect", "vless://abc")
	assert.ErrorIs(t, err, vpnurl.ErrInvalidScheme)
	assert.Empty(t, h.stdout.String())
}

func TestHelp(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.run("--help"))

	help := h.stderr.String()
	for _, want := range []string{"encode", "decode", "detect", "inspect", "--input-format", "Examples:"} {
		assert.Contains(t, help, want)
	}
}
