package abc

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/lmittmann/tint"
)

// Mount file names, relative to the module's working directory.
const (
	DeployFile  = "deployFile"
	ExecuteFile = "execFile"
	OutputFile  = "outFile"
)

// Output is the payload C writes to OutputFile.
var Output = []byte("42")

// Mounts resolves the mount files against a directory.
type Mounts struct {
	// Dir is the directory holding the mount files. Empty means ".".
	Dir string
	// Logger receives mount failure diagnostics. Nil means the package logger.
	Logger *slog.Logger
}

// Default resolves mounts against the working directory.
var Default = &Mounts{}

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
	Level:      slog.LevelInfo,
	TimeFormat: time.Kitchen,
	NoColor:    true,
}))

func (m *Mounts) path(name string) string {
	if m.Dir == "" {
		return name
	}
	return filepath.Join(m.Dir, name)
}

func (m *Mounts) log() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return logger
}

func (m *Mounts) read(kind Kind) ([]byte, error) {
	data, err := os.ReadFile(m.path(kind.File()))
	if err != nil {
		return nil, &MountError{Kind: kind, Err: err}
	}
	return data, nil
}

// Sum reads both input mounts and combines them with p0 and p1 into a
// negative value.
func (m *Mounts) Sum(p0 uint32, p1 float32) (int32, error) {
	dbytes, err := m.read(KindDeploy)
	if err != nil {
		return 0, err
	}
	ebytes, err := m.read(KindExec)
	if err != nil {
		return 0, err
	}

	d := xxhash.New()
	d.Write(dbytes)
	d.Write(ebytes)

	sum := int32(p0) + truncF32(p1) + int32(d.Sum64())
	return negative(sum), nil
}

// WriteOutput replaces the output mount's content with Output.
func (m *Mounts) WriteOutput() error {
	if err := os.WriteFile(m.path(OutputFile), Output, 0o644); err != nil {
		return &MountError{Kind: KindOutput, Err: err}
	}
	return nil
}

func (m *Mounts) fail(err error) int32 {
	kind, _ := KindOf(err)
	m.log().Error("reading a mount-file failed",
		"kind", kind.String(),
		"file", kind.File(),
		"err", err)
	return int32(kind)
}

// A returns Sum(p0, p1), or the sentinel code of the failed read.
func (m *Mounts) A(p0 uint32, p1 float32) int32 {
	v, err := m.Sum(p0, p1)
	if err != nil {
		return m.fail(err)
	}
	return v
}

// C writes Output to the output mount and returns math.MaxInt32, or the
// sentinel 404 if the write failed.
func (m *Mounts) C() uint32 {
	if err := m.WriteOutput(); err != nil {
		return uint32(m.fail(err))
	}
	// wasm integers are signed 32-bit, so the unsigned result stops at the
	// signed maximum.
	return math.MaxInt32
}

// A reads deployFile and execFile and always returns a negative value.
func A(p0 uint32, p1 float32) int32 { return Default.A(p0, p1) }

// B returns a 32-bit float.
func B() float32 { return 4.2 }

// C writes "42" to outFile.
func C() uint32 { return Default.C() }
