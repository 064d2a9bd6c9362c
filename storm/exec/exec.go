// Package exec provides shell command execution helpers
// for the git and gh invocations the generator performs.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Ex executes the named command in the given directory
// and returns combined stdout+stderr output. Pass empty
// dir to use the current working directory.
func Ex(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	const errCtx = "executing command"

	slog.Info(
		"executing",
		"cmd", name,
		"args", strings.Join(arg, " "),
	)

	cmd := exec.CommandContext(ctx, name, arg...)
	if dir != "" {
		cmd.Dir = dir
	}

	by, err := cmd.CombinedOutput()

	slog.Debug("output", "result", string(by))

	if err != nil {
		return string(by), fmt.Errorf(
			"%s: %s %s: %w",
			errCtx, name, strings.Join(arg, " "), err,
		)
	}

	return string(by), nil
}

// ExTrim executes the command and returns its output
// with surrounding whitespace removed. Useful for
// single-value git queries like rev-parse.
func ExTrim(
	ctx context.Context,
	dir string,
	name string,
	arg ...string,
) (string, error) {
	out, err := Ex(ctx, dir, name, arg...)

	return strings.TrimSpace(out), err
}

// Lookup reports whether the named binary is present on
// the execution path.
func Lookup(name string) error {
	const errCtx = "looking up binary"

	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, name, err,
		)
	}

	return nil
}
