package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wasmiot/mountio/mount"
)

var (
	ErrInstanceClosed   = errors.New("instance closed")
	ErrFunctionNotFound = errors.New("function not found")
)

// Instance is an instantiated module whose exported functions can be called
// repeatedly. Its mount directory lives as long as the instance, so files the
// module writes in one call are visible to the next.
type Instance struct {
	name   string
	cfg    runConfig
	dir    *mount.Dir
	module api.Module
	stdout *output
	stderr *output

	mu     sync.Mutex
	closed bool
}

// Instantiate stages the mounts and instantiates mod as a reactor: its
// _initialize function runs if exported, _start does not.
func (e *Executor) Instantiate(ctx context.Context, mod Module, opts ...Option) (*Instance, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	compiled, err := e.getCompiled(ctx, mod)
	if err != nil {
		return nil, err
	}

	dir, err := prepareMounts(cfg)
	if err != nil {
		return nil, err
	}

	inst := &Instance{
		name:   mod.Name(),
		cfg:    cfg,
		dir:    dir,
		stdout: &output{},
		stderr: &output{},
	}

	moduleConfig := newModuleConfig(cfg, dir, inst.stdout, inst.stderr).
		WithStartFunctions("_initialize")

	module, err := e.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err != nil {
		dir.Close()
		return nil, fmt.Errorf("instantiate %s: %w", mod.Name(), err)
	}
	inst.module = module

	Logger().Debug("instantiated module",
		zap.String("module", inst.name),
		zap.String("dir", dir.Path()),
		zap.Bool("writable", dir.Writable()))

	return inst, nil
}

// Function returns the definition of an exported function.
func (i *Instance) Function(name string) (Function, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return Function{}, ErrInstanceClosed
	}
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return Function{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	def := fn.Definition()
	return Function{Name: name, Params: def.ParamTypes(), Results: def.ResultTypes()}, nil
}

// Call invokes an exported function with encoded params. Calls on the same
// instance are serialized.
func (i *Instance) Call(ctx context.Context, name string, params ...uint64) Result {
	i.mu.Lock()
	defer i.mu.Unlock()

	start := time.Now()

	if i.closed {
		return Result{Error: ErrInstanceClosed, Duration: time.Since(start)}
	}

	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return Result{Error: fmt.Errorf("%w: %s", ErrFunctionNotFound, name), Duration: time.Since(start)}
	}

	def := fn.Definition()
	if got, want := len(params), len(def.ParamTypes()); got != want {
		return Result{
			Error:    fmt.Errorf("%w: %s wants %d, got %d", ErrParamCount, name, want, got),
			Duration: time.Since(start),
		}
	}

	if i.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.cfg.timeout)
		defer cancel()
	}

	i.stdout.Reset()
	i.stderr.Reset()

	raw, err := fn.Call(ctx, params...)

	result := Result{
		Values:   newValues(def.ResultTypes(), raw),
		Output:   i.stdout.String() + i.stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			result.Error = fmt.Errorf("timeout after %v", i.cfg.timeout)
		} else {
			result.Error = fmt.Errorf("call %s: %w", name, err)
		}
	}

	Logger().Debug("call",
		zap.String("module", i.name),
		zap.String("function", name),
		zap.Stringers("results", result.Values),
		zap.Duration("took", result.Duration),
		zap.Error(result.Error))

	return result
}

// Outputs returns the content of the output mounts written so far and copies
// them to their host paths.
func (i *Instance) Outputs() (map[string][]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, ErrInstanceClosed
	}
	return i.dir.Collect()
}

// Mounts returns the mounts the instance was created with.
func (i *Instance) Mounts() []mount.Mount {
	return i.dir.Mounts()
}

// ReadMount returns the current content of any mount.
func (i *Instance) ReadMount(name string) ([]byte, error) {
	return i.dir.Read(name)
}

// Close closes the module and removes its mount directory.
func (i *Instance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	err := i.module.Close(context.Background())
	return multierr.Append(err, i.dir.Close())
}

func prepareMounts(cfg runConfig) (*mount.Dir, error) {
	dir, err := mount.Prepare(cfg.mounts, cfg.mountOptions...)
	if err != nil {
		return nil, fmt.Errorf("prepare mounts: %w", err)
	}
	return dir, nil
}

// newModuleConfig pre-opens the mount directory as the module's root, so
// relative mount names resolve inside it.
func newModuleConfig(cfg runConfig, dir *mount.Dir, stdout, stderr io.Writer) wazero.ModuleConfig {
	fsConfig := wazero.NewFSConfig()
	if dir.Writable() {
		fsConfig = fsConfig.WithDirMount(dir.Path(), "/")
	} else {
		fsConfig = fsConfig.WithReadOnlyDirMount(dir.Path(), "/")
	}

	moduleConfig := wazero.NewModuleConfig().
		WithFSConfig(fsConfig).
		WithStdout(stdout).
		WithStderr(stderr).
		WithSysWalltime().
		WithSysNanotime().
		WithEnv("PWD", "/").
		// Instance names must be unique within the runtime, so leave it anonymous.
		WithName("")

	for k, v := range cfg.env {
		moduleConfig = moduleConfig.WithEnv(k, v)
	}
	return moduleConfig
}

type output struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (o *output) Write(data []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.Write(data)
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

func (o *output) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.Reset()
}
