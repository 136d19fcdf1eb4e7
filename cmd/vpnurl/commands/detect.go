package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/vpnurl/vpnurl"
	"github.com/vpnurl/vpnurl/internal/cli"
)

func detectCommand(env *Env) *cli.Command {
	var opts ioOptions

	return &cli.Command{
		Name:    "detect",
		Summary: "Report whether input is a token or a document",
		Description: `Print "token", "document" or "unrecognized" for the input, using the
same rules as autodetect mode. Exits with status 1 when the input is
unrecognized. The answer only says which operation to try, not whether
it will succeed.`,
		Usage: "vpnurl detect [flags] [data...]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("detect", pflag.ContinueOnError)
			opts.registerInput(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			s, err := opts.session(env, "detect")
			if err != nil {
				return err
			}
			input, err := s.readInput(args)
			if err != nil {
				return err
			}

			kind := vpnurl.DetectInput(string(input))
			if _, err := fmt.Fprintln(env.Stdout, kind); err != nil {
				return err
			}
			if kind == vpnurl.InputUnrecognized {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
