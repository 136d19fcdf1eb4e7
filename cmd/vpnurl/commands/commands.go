// Package commands builds the vpnurl command tree.
//
// Every command reads through an Env rather than the process globals, so
// tests drive the whole tree with buffers and an in-memory file system.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/vpnurl/vpnurl"
	"github.com/vpnurl/vpnurl/internal/cli"
	"github.com/vpnurl/vpnurl/internal/config"
	"github.com/vpnurl/vpnurl/internal/vfs"
)

// Env is the outside world a command runs against.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	FS     vfs.FileSystem
	Getenv func(string) string
}

// OSEnv returns an Env bound to the process's standard streams, the host
// file system and environment.
func OSEnv() *Env {
	return &Env{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		FS:     vfs.OS(),
		Getenv: os.Getenv,
	}
}

// Root builds the complete command tree. Without a subcommand, vpnurl
// autodetects whether its input is a token or a document.
func Root(env *Env) *cli.Command {
	var (
		opts   ioOptions
		encode bool
		decode bool
	)

	return &cli.Command{
		Name: "vpnurl",
		Description: `vpnurl: pack VPN configuration documents into vpn:// tokens.

A token is "vpn://" followed by unpadded URL-safe base64 of a 4-byte
big-endian length and a zlib stream of the document's JSON text. Tokens
from older encoders that carry the raw JSON text also decode.

Without a command, the input is autodetected: a vpn:// token is decoded
and a JSON document is encoded. Use -e or -d to choose explicitly.

Input comes from --input, else the arguments joined by spaces, else stdin.
Results go to --output, else stdout.`,
		Usage:  "vpnurl [-e|-d] [-i file] [-o file] [data...]",
		Output: env.Stderr,
		Examples: []cli.Example{
			{
				Description: "Encode a document given on the command line",
				Command:     `vpnurl '{"server":"vpn.example.com","port":51820}'`,
			},
			{
				Description: "Decode a token from a file into YAML",
				Command:     "vpnurl -d -i token.txt --output-format yaml",
			},
			{
				Description: "Encode a commented config read from stdin",
				Command:     "vpnurl -e --input-format jsonc < client.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("vpnurl", pflag.ContinueOnError)
			flagSet.BoolVarP(&encode, "encode", "e", false, "encode the input document into a token")
			flagSet.BoolVarP(&decode, "decode", "d", false, "decode the input token into a document")
			opts.register(flagSet)
			return flagSet
		},
		Subcommands: []*cli.Command{
			encodeCommand(env),
			decodeCommand(env),
			detectCommand(env),
			inspectCommand(env),
		},
		Run: func(args []string) error {
			if encode && decode {
				return fmt.Errorf("-e/--encode and -d/--decode are mutually exclusive")
			}

			s, err := opts.session(env, "autodetect")
			if err != nil {
				return err
			}
			input, err := s.readInput(args)
			if err != nil {
				return err
			}

			switch {
			case encode:
				return s.encode(input)
			case decode:
				return s.decode(input)
			}

			kind := vpnurl.DetectInput(string(input))
			switch {
			case kind == vpnurl.InputWireToken:
				s.logger.Info("input is a vpn:// token, decoding")
				return s.decode(input)
			case kind == vpnurl.InputDocument:
				s.logger.Info("input is a document, encoding")
				return s.encode(input)
			case opts.inputFormat != formatAuto:
				s.logger.Info("input format given, encoding", "input_format", opts.inputFormat)
				return s.encode(input)
			}
			return fmt.Errorf("could not determine the input type; use -e to encode or -d to decode")
		},
	}
}

// Input formats for documents.
const (
	formatAuto  = "auto"
	formatJSON  = "json"
	formatJSONC = "jsonc"
	formatYAML  = "yaml"
	formatTOML  = "toml"
)

// ioOptions are the flags shared by every command that reads input and
// writes a result.
type ioOptions struct {
	input        string
	output       string
	configPath   string
	verbose      bool
	inputFormat  string
	outputFormat string
}

func (o *ioOptions) register(flagSet *pflag.FlagSet) {
	o.registerInput(flagSet)
	flagSet.StringVarP(&o.output, "output", "o", "", "write the result to `file` instead of stdout")
	flagSet.StringVar(&o.inputFormat, "input-format", formatAuto, "document input format: auto, json, jsonc, yaml or toml")
	flagSet.StringVar(&o.outputFormat, "output-format", "", "decoded document format: json, yaml or toml (default from config, else json)")
}

// registerInput adds the flags of commands that only read.
func (o *ioOptions) registerInput(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.input, "input", "i", "", "read input from `file` instead of the arguments or stdin")
	flagSet.StringVar(&o.configPath, "config", "", "configuration `file` (default $"+config.EnvVar+")")
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log debug details to stderr")
}

// session is one command invocation with its configuration resolved.
type session struct {
	env    *Env
	opts   *ioOptions
	cfg    *config.Config
	logger *slog.Logger
}

// session loads the configuration file, applies flag overrides and builds
// the command logger.
func (o *ioOptions) session(env *Env, command string) (*session, error) {
	cfg, err := config.Load(env.FS, config.Resolve(o.configPath, env.Getenv))
	if err != nil {
		return nil, err
	}
	if o.outputFormat != "" {
		cfg.Output.Format = o.outputFormat
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch o.inputFormat {
	case formatAuto, formatJSON, formatJSONC, formatYAML, formatTOML:
	case "":
		o.inputFormat = formatAuto
	default:
		return nil, fmt.Errorf("--input-format must be one of auto, json, jsonc, yaml, toml, got %q", o.inputFormat)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &session{
		env:    env,
		opts:   o,
		cfg:    cfg,
		logger: cli.NewCommandLogger(env.Stderr, level).With("command", command),
	}, nil
}
