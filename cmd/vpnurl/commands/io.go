package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/vpnurl/vpnurl/internal/vfs"
)

// readInput returns the --input file when set, else the arguments joined
// by single spaces, else everything on stdin.
func (s *session) readInput(args []string) ([]byte, error) {
	if s.opts.input != "" {
		if len(args) > 0 {
			s.logger.Warn("ignoring arguments, reading --input instead", "input", s.opts.input, "args", len(args))
		}
		info, err := s.env.FS.Stat(s.opts.input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.opts.input, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("read %s: is a directory", s.opts.input)
		}
		data, err := vfs.ReadFile(s.env.FS, s.opts.input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.opts.input, err)
		}
		return data, nil
	}

	if len(args) > 0 {
		return []byte(strings.Join(args, " ")), nil
	}

	if s.env.Stdin == nil {
		return nil, nil
	}
	data, err := io.ReadAll(s.env.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}

// writeOutput writes content to the --output file exactly as given, or to
// stdout followed by a newline.
func (s *session) writeOutput(content string) error {
	if s.opts.output != "" {
		if err := vfs.WriteFile(s.env.FS, s.opts.output, []byte(content)); err != nil {
			return fmt.Errorf("write %s: %w", s.opts.output, err)
		}
		s.logger.Debug("wrote output", "output", s.opts.output, "bytes", len(content))
		return nil
	}

	_, err := fmt.Fprintln(s.env.Stdout, content)
	return err
}
