// Package convert wraps the external image conversion tool.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Converter defines image conversion behaviour.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string) error
}

// Option configures the CLI converter.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ImageMagick command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI converter using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "magick"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs the conversion tool with (source, destination). A non-zero
// exit is a failure for that file only; the tool's output is folded into the
// returned error.
func (c *CLI) Convert(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	cmd := commandContext(ctx, c.binary, inputPath, outputPath) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed != "" {
			return fmt.Errorf("%s convert failed: %w: %s", c.binary, err, trimmed)
		}
		return fmt.Errorf("%s convert failed: %w", c.binary, err)
	}
	return nil
}

var _ Converter = (*CLI)(nil)
