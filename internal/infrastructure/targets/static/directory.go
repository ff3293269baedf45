package static

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/multitask-helper/internal/core/domain"
)

type document struct {
	Targets []domain.Candidate `yaml:"targets"`
}

// Directory serves a fixed candidate list loaded from YAML. It stands in for
// a real window system in tests, demos and headless deployments.
type Directory struct {
	path string

	mu         sync.RWMutex
	candidates []domain.Candidate
	active     string
}

func New(candidates []domain.Candidate) *Directory {
	return &Directory{candidates: cloneCandidates(candidates)}
}

func Load(path string) (*Directory, error) {
	candidates, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return &Directory{path: path, candidates: candidates}, nil
}

func Parse(data []byte) ([]domain.Candidate, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse targets", err)
	}
	seen := make(map[string]struct{}, len(doc.Targets))
	for i, c := range doc.Targets {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse targets", fmt.Errorf("target %d has no id", i))
		}
		if _, dup := seen[id]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse targets", fmt.Errorf("duplicate target id %q", id))
		}
		seen[id] = struct{}{}
		doc.Targets[i].ID = id
	}
	if doc.Targets == nil {
		doc.Targets = []domain.Candidate{}
	}
	return doc.Targets, nil
}

func (d *Directory) ListCandidates(context.Context) ([]domain.Candidate, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneCandidates(d.candidates), nil
}

func (d *Directory) Activate(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, c := range d.candidates {
		if c.ID == id {
			d.active = id
			d.candidates[i].Minimized = false
			return true, nil
		}
	}
	return false, nil
}

// Active returns the id of the last activated target.
func (d *Directory) Active() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

// Watch reloads the file whenever it changes until ctx is done. A file that
// fails to parse leaves the previous list in place.
func (d *Directory) Watch(ctx context.Context) error {
	if d.path == "" {
		return errors.New("static directory has no backing file")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create targets watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(d.path)); err != nil {
		return fmt.Errorf("watch targets dir: %w", err)
	}
	target := filepath.Clean(d.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			d.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("targets_watch_error", "path", d.path, "error", err)
		}
	}
}

func (d *Directory) reload() {
	candidates, err := readFile(d.path)
	if err != nil {
		slog.Warn("targets_reload_failed", "path", d.path, "error", err)
		return
	}
	d.mu.Lock()
	d.candidates = candidates
	d.mu.Unlock()
	slog.Info("targets_reloaded", "path", d.path, "targets", len(candidates))
}

func readFile(path string) ([]domain.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read targets file: %w", err)
	}
	return Parse(data)
}

func cloneCandidates(in []domain.Candidate) []domain.Candidate {
	out := make([]domain.Candidate, len(in))
	copy(out, in)
	return out
}
