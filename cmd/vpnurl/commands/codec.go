package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vpnurl/vpnurl"
	"github.com/vpnurl/vpnurl/document"
	"github.com/vpnurl/vpnurl/internal/cli"
	"github.com/vpnurl/vpnurl/internal/config"
)

func encodeCommand(env *Env) *cli.Command {
	var opts ioOptions

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a document into a vpn:// token",
		Description: `Encode a JSON document into a vpn:// token.

The document is re-serialized with two-space indentation before it is
compressed, so formatting and duplicate keys in the input do not carry
over. Key order does. With --input-format jsonc, yaml or toml the input
may be commented JSON, YAML or TOML. TOML tables come out with their keys
sorted.`,
		Usage: "vpnurl encode [flags] [document...]",
		Examples: []cli.Example{
			{
				Description: "Encode a YAML client config",
				Command:     "vpnurl encode --input-format yaml -i client.yaml -o token.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			opts.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := opts.session(env, "encode")
			if err != nil {
				return err
			}
			input, err := s.readInput(args)
			if err != nil {
				return err
			}
			return s.encode(input)
		},
	}
}

func decodeCommand(env *Env) *cli.Command {
	var opts ioOptions

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a vpn:// token into a document",
		Description: `Decode a vpn:// token and print the document it carries.

Surrounding whitespace is ignored. Both the compressed token layout and
the raw legacy layout are accepted. The document is printed as JSON with
output.indent spaces per level, or as YAML or TOML with --output-format.
TOML output needs an object document without nulls.`,
		Usage: "vpnurl decode [flags] [token]",
		Examples: []cli.Example{
			{
				Description: "Decode a token pasted on the command line",
				Command:     "vpnurl decode vpn://AAAAHXic...",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			opts.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := opts.session(env, "decode")
			if err != nil {
				return err
			}
			input, err := s.readInput(args)
			if err != nil {
				return err
			}
			return s.decode(input)
		},
	}
}

func (s *session) encode(input []byte) error {
	doc, err := s.parseDocument(input)
	if err != nil {
		return err
	}

	token, err := vpnurl.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	s.logger.Debug("encoded document", "kind", doc.Kind().String(), "token_length", len(token))
	return s.writeOutput(token)
}

func (s *session) decode(input []byte) error {
	token := strings.TrimSpace(string(input))

	result, err := vpnurl.DecodeDetailed(token)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if result.Discarded != nil {
		s.logger.Debug("compressed layout rejected, decoded legacy layout", "error", result.Discarded)
	}
	s.logger.Debug("decoded token", "format", string(result.Format), "token_length", len(token))

	text, err := s.formatDocument(result.Document)
	if err != nil {
		return err
	}
	return s.writeOutput(text)
}

// parseDocument reads input in the --input-format. Auto accepts JSON, and
// JSONC as well when input.comments is set.
func (s *session) parseDocument(input []byte) (document.Value, error) {
	var (
		doc document.Value
		err error
	)
	switch s.opts.inputFormat {
	case formatJSON:
		doc, err = document.Parse(input)
	case formatJSONC:
		doc, err = document.ParseJSONC(input)
	case formatYAML:
		doc, err = document.ParseYAML(input)
	case formatTOML:
		doc, err = document.ParseTOML(input)
	default:
		doc, err = document.Parse(input)
		if err != nil && s.cfg.Input.Comments && !errors.Is(err, document.ErrEmpty) {
			s.logger.Debug("input is not plain JSON, retrying as JSONC", "error", err)
			doc, err = document.ParseJSONC(input)
		}
	}
	if err != nil {
		return document.Value{}, fmt.Errorf("parse %s input: %w", s.opts.inputFormat, err)
	}
	return doc, nil
}

func (s *session) formatDocument(doc document.Value) (string, error) {
	var (
		text []byte
		err  error
	)
	switch s.cfg.Output.Format {
	case config.FormatYAML:
		text, err = document.MarshalYAML(doc)
	case config.FormatTOML:
		text, err = document.MarshalTOML(doc)
	default:
		text, err = document.MarshalIndent(doc, s.cfg.IndentString())
	}
	if err != nil {
		return "", fmt.Errorf("format %s output: %w", s.cfg.Output.Format, err)
	}
	return strings.TrimSuffix(string(text), "\n"), nil
}
