package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes git commands. The exec-backed implementation is used
// in production; tests substitute a scripted runner.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

type execRunner struct {
	dir string
}

// NewRunner returns a Runner that shells out to the git binary with dir
// as the working directory.
func NewRunner(dir string) Runner {
	return &execRunner{dir: dir}
}

func (r *execRunner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}
