package utils

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// RunCommandWithContext runs name with args and returns the combined output.
// A non-zero exit status is reported with the output attached to the error.
func RunCommandWithContext(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	// we don't treat timeout as error
	if err != nil && ctx.Err() != context.DeadlineExceeded {
		if _, ok := err.(*exec.ExitError); ok {
			return out, errors.Wrapf(err, "%s: %s", CommandLine(name, args...), strings.TrimSpace(string(out)))
		}
		return nil, errors.Wrap(err, CommandLine(name, args...))
	}
	return out, nil
}

func RunCommandWithTimeout(timeout time.Duration, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return RunCommandWithContext(ctx, name, args...)
}

func RunCommand(name string, args ...string) ([]byte, error) {
	return RunCommandWithContext(context.Background(), name, args...)
}

// CommandLine joins name and args the way a shell user would type them.
func CommandLine(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}
