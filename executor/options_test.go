package executor

import (
	"testing"
	"time"

	"github.com/wasmiot/mountio/mount"
)

func TestRunOptions(t *testing.T) {
	cfg := defaultRunConfig()
	for _, opt := range []Option{
		WithTimeout(time.Second),
		WithEnv("MODE", "test"),
		WithEnv("LEVEL", "2"),
		WithArgs("-v"),
		WithMount("deployFile", "/tmp/d", StageDeployment),
		WithMounts(mount.Mount{Name: "outFile", Stage: StageOutput}),
		WithMaxFileSize(64),
	} {
		opt(&cfg)
	}

	if cfg.timeout != time.Second {
		t.Errorf("expected 1s timeout, got %v", cfg.timeout)
	}
	if cfg.env["MODE"] != "test" || cfg.env["LEVEL"] != "2" {
		t.Errorf("unexpected env %v", cfg.env)
	}
	if len(cfg.args) != 1 || cfg.args[0] != "-v" {
		t.Errorf("unexpected args %v", cfg.args)
	}
	if len(cfg.mounts) != 2 || cfg.mounts[1].Name != "outFile" {
		t.Errorf("unexpected mounts %+v", cfg.mounts)
	}
	if len(cfg.mountOptions) != 1 {
		t.Errorf("expected one mount option, got %d", len(cfg.mountOptions))
	}
}

func TestMemoryLimitPages(t *testing.T) {
	const page = 64 << 10
	tests := []struct {
		pages uint32
		bytes int
	}{
		{MemoryLimit1MB, 1 << 20},
		{MemoryLimit16MB, 16 << 20},
		{MemoryLimit64MB, 64 << 20},
		{MemoryLimit256MB, 256 << 20},
		{MemoryLimit1GB, 1 << 30},
	}
	for _, tc := range tests {
		if got := int(tc.pages) * page; got != tc.bytes {
			t.Errorf("%d pages = %d bytes, want %d", tc.pages, got, tc.bytes)
		}
	}
}
