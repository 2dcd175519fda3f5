package mount

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Stage defines when a mount file is provided to or produced by a module.
type Stage int

const (
	// StageDeployment files are mounted when the module is deployed.
	StageDeployment Stage = iota
	// StageExecution files are mounted for a single execution.
	StageExecution
	// StageOutput files are written by the module and collected afterwards.
	StageOutput
)

func (s Stage) String() string {
	switch s {
	case StageDeployment:
		return "deployment"
	case StageExecution:
		return "execution"
	case StageOutput:
		return "output"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ParseStage accepts the stage names and their short forms.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(s) {
	case "deployment", "deploy":
		return StageDeployment, nil
	case "execution", "exec":
		return StageExecution, nil
	case "output", "out":
		return StageOutput, nil
	default:
		return 0, fmt.Errorf("invalid mount stage %q (expected deployment, execution, or output)", s)
	}
}

// Mount maps a file name seen by the module to a file on the host.
type Mount struct {
	Name     string // File name as seen by the module (e.g., "deployFile")
	HostPath string // Source for inputs, destination for outputs (optional)
	Stage    Stage
}

// Input reports whether the module reads the mount.
func (m Mount) Input() bool { return m.Stage != StageOutput }

var (
	ErrInvalidName  = errors.New("invalid mount name")
	ErrDuplicate    = errors.New("duplicate mount name")
	ErrTooLarge     = errors.New("mount file too large")
	ErrNotMounted   = errors.New("not a mount")
	ErrPathEscape   = errors.New("permission denied: path escape attempt")
	ErrMissingInput = errors.New("input mount file not found")
)

// Option configures Prepare.
type Option func(*config)

type config struct {
	maxFileSize int64
	baseDir     string
}

// WithMaxFileSize limits the size of staged inputs and collected outputs.
// Zero or less means no limit.
func WithMaxFileSize(size int64) Option {
	return func(c *config) {
		c.maxFileSize = size
	}
}

// WithBaseDir creates sandbox directories under dir instead of os.TempDir.
func WithBaseDir(dir string) Option {
	return func(c *config) {
		c.baseDir = dir
	}
}

// Dir is a private directory holding the mount files of one module instance.
// It is mounted as the module's root, so the module sees each mount under its
// plain name.
type Dir struct {
	path   string
	mounts []Mount
	cfg    config

	mu     sync.Mutex
	closed bool
}

// Validate checks mount names for path elements and duplicates.
func Validate(mounts []Mount) error {
	seen := make(map[string]struct{}, len(mounts))
	for _, m := range mounts {
		if m.Name == "" || m.Name == "." || m.Name == ".." ||
			strings.ContainsAny(m.Name, `/\`) || m.Name != filepath.Base(m.Name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
		}
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicate, m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// Prepare creates a sandbox directory and copies every input mount into it.
// Output mounts are left for the module to create.
func Prepare(mounts []Mount, opts ...Option) (*Dir, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := Validate(mounts); err != nil {
		return nil, err
	}

	path, err := os.MkdirTemp(cfg.baseDir, "mountio-")
	if err != nil {
		return nil, fmt.Errorf("create mount dir: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	d := &Dir{
		path:   path,
		mounts: append([]Mount(nil), mounts...),
		cfg:    cfg,
	}

	for _, m := range mounts {
		if !m.Input() {
			continue
		}
		if err := d.stage(m); err != nil {
			d.Close()
			return nil, err
		}
	}

	return d, nil
}

func (d *Dir) stage(m Mount) error {
	src, err := os.Open(m.HostPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s (%s)", ErrMissingInput, m.Name, m.HostPath)
		}
		return fmt.Errorf("open %s mount %s: %w", m.Stage, m.Name, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", m.HostPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("mount %s: %s is a directory", m.Name, m.HostPath)
	}
	if d.cfg.maxFileSize > 0 && info.Size() > d.cfg.maxFileSize {
		return fmt.Errorf("%w: %s (%d > %d bytes)", ErrTooLarge, m.Name, info.Size(), d.cfg.maxFileSize)
	}

	// Inputs are read-only to the module.
	dst, err := os.OpenFile(filepath.Join(d.path, m.Name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o444)
	if err != nil {
		return fmt.Errorf("stage %s: %w", m.Name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("stage %s: %w", m.Name, err)
	}
	return dst.Close()
}

// Path returns the host directory backing the mounts.
func (d *Dir) Path() string { return d.path }

// Mounts returns the mounts the directory was prepared with.
func (d *Dir) Mounts() []Mount { return append([]Mount(nil), d.mounts...) }

// Writable reports whether any output mount is declared. Without one the
// directory should be mounted read-only.
func (d *Dir) Writable() bool {
	for _, m := range d.mounts {
		if m.Stage == StageOutput {
			return true
		}
	}
	return false
}

// resolve maps a mount name to its host path.
func (d *Dir) resolve(name string) (string, error) {
	for _, m := range d.mounts {
		if m.Name == name {
			return filepath.Join(d.path, name), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotMounted, name)
}

// Read returns the current content of a mount.
func (d *Dir) Read(name string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, os.ErrClosed
	}

	hostPath, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	// The module can replace a writable mount with a symlink or directory,
	// so only a regular file inside the directory is read.
	info, err := os.Lstat(hostPath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrPathEscape, name)
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	opened, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !os.SameFile(info, opened) {
		return nil, fmt.Errorf("%w: %s changed while reading", ErrPathEscape, name)
	}
	if d.cfg.maxFileSize > 0 && opened.Size() > d.cfg.maxFileSize {
		return nil, fmt.Errorf("%w: %s (%d > %d bytes)", ErrTooLarge, name, opened.Size(), d.cfg.maxFileSize)
	}

	return io.ReadAll(f)
}

// Collect returns the content of every output mount the module produced, and
// copies each one to its HostPath when set. Missing outputs are skipped.
func (d *Dir) Collect() (map[string][]byte, error) {
	outputs := make(map[string][]byte)
	for _, m := range d.mounts {
		if m.Stage != StageOutput {
			continue
		}

		data, err := d.Read(m.Name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return outputs, fmt.Errorf("collect %s: %w", m.Name, err)
		}
		outputs[m.Name] = data

		if m.HostPath != "" {
			if err := os.WriteFile(m.HostPath, data, 0o644); err != nil {
				return outputs, fmt.Errorf("copy %s to %s: %w", m.Name, m.HostPath, err)
			}
		}
	}
	return outputs, nil
}

// Close removes the sandbox directory.
func (d *Dir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return os.RemoveAll(d.path)
}
