package wmctrl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
	"github.com/kirillkom/multitask-helper/internal/infrastructure/targets"
)

const unknownProcess = "unknown"

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Directory lists X11 top-level windows through wmctrl and xprop.
type Directory struct {
	run      Runner
	readComm func(pid string) (string, error)
}

func New() *Directory {
	return &Directory{
		run:      execRunner,
		readComm: procComm,
	}
}

func NewWithRunner(run Runner, readComm func(pid string) (string, error)) *Directory {
	if run == nil {
		run = execRunner
	}
	if readComm == nil {
		readComm = procComm
	}
	return &Directory{run: run, readComm: readComm}
}

func (d *Directory) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	out, err := d.run(ctx, "wmctrl", "-l", "-p")
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "wmctrl list", err)
	}

	windows := parseWindowList(out)
	candidates := make([]domain.Candidate, 0, len(windows))
	for _, w := range windows {
		process, err := d.readComm(w.pid)
		if err != nil || process == "" {
			process = unknownProcess
		}
		candidates = append(candidates, domain.Candidate{
			ID:          w.id,
			Title:       w.title,
			ProcessName: process,
			Minimized:   d.minimized(ctx, w.id),
		})
	}
	return targets.ApplicationWindows(candidates), nil
}

// Activate raises the window. Unknown ids report false without error.
func (d *Directory) Activate(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, domain.WrapError(domain.ErrInvalidInput, "wmctrl activate", errors.New("empty window id"))
	}

	out, err := d.run(ctx, "wmctrl", "-l", "-p")
	if err != nil {
		return false, domain.WrapError(domain.ErrTemporary, "wmctrl list", err)
	}
	found := false
	for _, w := range parseWindowList(out) {
		if w.id == id {
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if _, err := d.run(ctx, "wmctrl", "-i", "-a", id); err != nil {
		slog.Warn("wmctrl_activate_failed", "window_id", id, "error", err)
		return false, nil
	}
	return true, nil
}

func (d *Directory) minimized(ctx context.Context, id string) bool {
	out, err := d.run(ctx, "xprop", "-id", id, "_NET_WM_STATE")
	if err != nil {
		return false
	}
	return bytes.Contains(out, []byte("_NET_WM_STATE_HIDDEN"))
}

type window struct {
	id    string
	pid   string
	title string
}

// parseWindowList reads `wmctrl -l -p` output:
// <id> <desktop> <pid> <host> <title...>
func parseWindowList(out []byte) []window {
	var windows []window
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		// Desktop -1 marks sticky panels and docks.
		if fields[1] == "-1" {
			continue
		}
		title := ""
		if len(fields) > 4 {
			title = strings.Join(fields[4:], " ")
		}
		windows = append(windows, window{id: fields[0], pid: fields[2], title: title})
	}
	return windows
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return out, nil
}

func procComm(pid string) (string, error) {
	if pid == "" || pid == "0" {
		return "", errors.New("no pid")
	}
	data, err := os.ReadFile("/proc/" + pid + "/comm")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
