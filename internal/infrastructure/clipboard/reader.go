package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

const readTimeout = 2 * time.Second

// Reader shells out to a platform clipboard tool.
type Reader struct {
	name string
	args []string
	run  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewSystemReader picks pbpaste on darwin and xclip elsewhere.
func NewSystemReader() *Reader {
	if runtime.GOOS == "darwin" {
		return NewCommandReader("pbpaste")
	}
	return NewCommandReader("xclip", "-selection", "clipboard", "-o")
}

func NewCommandReader(name string, args ...string) *Reader {
	return &Reader{name: name, args: args, run: runCommand}
}

func (r *Reader) Read(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	out, err := r.run(ctx, r.name, r.args...)
	if err != nil {
		// xclip exits non-zero when the selection is empty.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && bytes.Contains(exitErr.Stderr, []byte("target STRING not available")) {
			return "", nil
		}
		return "", domain.WrapError(domain.ErrTemporary, "clipboard read", err)
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
