package executor

import (
	"time"

	"github.com/wasmiot/mountio/mount"
)

// Option configures a module instance.
type Option func(*runConfig)

type runConfig struct {
	timeout time.Duration
	mounts  []mount.Mount
	args    []string
	env     map[string]string
	// Security limits
	mountOptions []mount.Option
}

func defaultRunConfig() runConfig {
	return runConfig{
		timeout: 30 * time.Second,
		env:     make(map[string]string),
	}
}

// WithTimeout sets the maximum time of a single call. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// Mount stages (re-exported from mount for convenience).
const (
	StageDeployment = mount.StageDeployment
	StageExecution  = mount.StageExecution
	StageOutput     = mount.StageOutput
)

// WithMount adds a mount file. The name is what the module sees relative to
// its working directory; the host path is the source of an input or the
// destination an output is copied to.
//
// Examples:
//
//	executor.WithMount("deployFile", "./model.bin", executor.StageDeployment)
//	executor.WithMount("execFile", "./input.bin", executor.StageExecution)
//	executor.WithMount("outFile", "./result.txt", executor.StageOutput)
func WithMount(name, hostPath string, stage mount.Stage) Option {
	return func(c *runConfig) {
		c.mounts = append(c.mounts, mount.Mount{
			Name:     name,
			HostPath: hostPath,
			Stage:    stage,
		})
	}
}

// WithMounts adds several mount files at once.
func WithMounts(mounts ...mount.Mount) Option {
	return func(c *runConfig) {
		c.mounts = append(c.mounts, mounts...)
	}
}

// WithMaxFileSize limits the size of staged and collected mount files.
func WithMaxFileSize(size int64) Option {
	return func(c *runConfig) {
		c.mountOptions = append(c.mountOptions, mount.WithMaxFileSize(size))
	}
}

// WithArgs sets the arguments passed to a command module after its name.
func WithArgs(args ...string) Option {
	return func(c *runConfig) {
		c.args = args
	}
}

// WithEnv sets an environment variable visible to the module.
func WithEnv(key, value string) Option {
	return func(c *runConfig) {
		c.env[key] = value
	}
}

// ExecutorOption configures the Executor at creation time.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	diskCache        bool
	cacheDir         string
	precompile       []Module
	memoryLimitPages uint32 // 0 keeps the wazero limit of 4GB
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{}
}

// WithDiskCache keeps compiled modules on disk between runs, in dir or in
// $XDG_CACHE_HOME/mountio (~/.cache/mountio) when dir is omitted.
func WithDiskCache(dir ...string) ExecutorOption {
	return func(c *executorConfig) {
		c.diskCache = true
		if len(dir) > 0 && dir[0] != "" {
			c.cacheDir = dir[0]
		}
	}
}

// WithPrecompile compiles mods in New, so a broken module fails there.
func WithPrecompile(mods ...Module) ExecutorOption {
	return func(c *executorConfig) {
		c.precompile = mods
	}
}

// WithMemoryLimit caps the linear memory of every module, in 64KiB pages.
func WithMemoryLimit(pages uint32) ExecutorOption {
	return func(c *executorConfig) {
		c.memoryLimitPages = pages
	}
}

// Page counts for WithMemoryLimit.
const (
	MemoryLimit1MB   uint32 = 1 << 4
	MemoryLimit16MB  uint32 = 1 << 8
	MemoryLimit64MB  uint32 = 1 << 10
	MemoryLimit256MB uint32 = 1 << 12
	MemoryLimit1GB   uint32 = 1 << 14
)
