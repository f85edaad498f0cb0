package biscuit

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// execCommandContext is a var so tests can stub external helpers.
var execCommandContext = exec.CommandContext

// runSecretHelper runs an external secret-store helper with a hard
// deadline. A timeout kills the process and surfaces as an error.
func runSecretHelper(timeout time.Duration, name string, args ...string) (stdout string, stderr string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := execCommandContext(ctx, name, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()
	if runErr != nil {
		return stdout, stderr, fmt.Errorf("%s: %w", name, runErr)
	}
	return stdout, stderr, nil
}
