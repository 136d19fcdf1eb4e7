package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/vpnurl/vpnurl"
	"github.com/vpnurl/vpnurl/document"
	"github.com/vpnurl/vpnurl/internal/cli"
)

// inspectReport is the --json form of inspect's output.
type inspectReport struct {
	*vpnurl.Anatomy
	Document   json.RawMessage     `json:"document,omitempty"`
	Comparison []vpnurl.Comparison `json:"comparison,omitempty"`
	Error      string              `json:"error,omitempty"`
}

func inspectCommand(env *Env) *cli.Command {
	var (
		opts       ioOptions
		compare    bool
		outputJSON bool
	)

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show how a token is laid out",
		Description: `Break a vpn:// token into its parts: the body size, the length header,
the compressed payload and which layout decoded it. When the compressed
layout was rejected in favour of the legacy one, the reason is shown.

With --compare, the decoded document is also compressed with every
supported algorithm to show how long the token would be with each.
Tokens always use zlib.`,
		Usage: "vpnurl inspect [flags] [token]",
		Examples: []cli.Example{
			{
				Description: "Compare algorithms for a token, as JSON",
				Command:     "vpnurl inspect --compare --json -i token.txt",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			opts.registerInput(flagSet)
			flagSet.BoolVar(&compare, "compare", false, "compare token sizes across compression algorithms")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			s, err := opts.session(env, "inspect")
			if err != nil {
				return err
			}
			input, err := s.readInput(args)
			if err != nil {
				return err
			}
			token := strings.TrimSpace(string(input))

			anatomy, decodeErr := vpnurl.Inspect(token)
			if anatomy == nil {
				return fmt.Errorf("inspect: %w", decodeErr)
			}

			report := inspectReport{Anatomy: anatomy}
			if decodeErr != nil {
				report.Error = decodeErr.Error()
			} else {
				text, err := document.Marshal(anatomy.Document)
				if err != nil {
					return fmt.Errorf("inspect: %w", err)
				}
				report.Document = text

				if compare {
					indented, err := document.MarshalIndent(anatomy.Document, vpnurl.Indent)
					if err != nil {
						return fmt.Errorf("inspect: %w", err)
					}
					report.Comparison, err = vpnurl.CompareAlgorithms(indented)
					if err != nil {
						return fmt.Errorf("inspect: %w", err)
					}
				}
			}

			if outputJSON {
				encoder := json.NewEncoder(env.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(report); err != nil {
					return err
				}
			} else if err := writeInspectText(env.Stdout, report); err != nil {
				return err
			}

			if decodeErr != nil {
				return fmt.Errorf("inspect: %w", decodeErr)
			}
			return nil
		},
	}
}

func writeInspectText(w io.Writer, report inspectReport) error {
	a := report.Anatomy

	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "token length\t%d\n", a.TokenLength)
	fmt.Fprintf(writer, "body size\t%d\n", a.BodySize)
	if a.HasHeader {
		fmt.Fprintf(writer, "header length\t%d\n", a.HeaderLength)
		fmt.Fprintf(writer, "payload size\t%d\n", a.PayloadSize)
		if a.PayloadMagic != "" {
			fmt.Fprintf(writer, "payload magic\t%s\n", a.PayloadMagic)
		} else {
			fmt.Fprintf(writer, "payload magic\tnone\n")
		}
	} else {
		fmt.Fprintf(writer, "header\tbody shorter than %d bytes\n", vpnurl.HeaderSize)
	}
	if a.Format != "" {
		fmt.Fprintf(writer, "format\t%s\n", a.Format)
		fmt.Fprintf(writer, "document size\t%d\n", a.DocumentSize)
		fmt.Fprintf(writer, "ratio\t%.3f\n", a.Ratio)
	} else {
		fmt.Fprintf(writer, "format\tnone\n")
	}
	if a.DiscardedError != "" {
		fmt.Fprintf(writer, "compressed layout rejected\t%s\n", a.DiscardedError)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if len(report.Comparison) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	writer = tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ALGORITHM\tCOMPRESSED\tTOKEN\tRATIO\tSAVED\n")
	for _, c := range report.Comparison {
		fmt.Fprintf(writer, "%s\t%d\t%d\t%.3f\t%.1f%%\n",
			c.Algorithm, c.CompressedSize, c.TokenLength, c.Ratio,
			vpnurl.GetCompressionPercentage(int64(c.OriginalSize), int64(c.CompressedSize)))
	}
	return writer.Flush()
}
