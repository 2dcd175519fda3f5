package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result holds the values and metadata from a function call or module run.
type Result struct {
	Values   []Value
	Output   string
	Outputs  map[string][]byte
	Duration time.Duration
	Error    error
}

// Function describes an exported function.
type Function struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

func (f Function) String() string {
	return FormatSignature(f.Name, f.Params, f.Results)
}

var ErrExecutorClosed = errors.New("executor closed")

// Executor manages a WASM runtime and compiled module caching.
type Executor struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	compiled map[string]wazero.CompiledModule
	mu       sync.RWMutex
	closed   bool
}

// New creates an Executor with WASI preview1 available to every module.
func New(opts ...ExecutorOption) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error

	if cfg.diskCache {
		cacheDir := cfg.cacheDir
		if cacheDir == "" {
			cacheDir = defaultCacheDir()
		}
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
		Logger().Debug("compilation cache enabled", zap.String("dir", cacheDir))
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		err = multierr.Append(err, rt.Close(ctx))
		if cache != nil {
			err = multierr.Append(err, cache.Close(ctx))
		}
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	e := &Executor{
		runtime:  rt,
		cache:    cache,
		compiled: make(map[string]wazero.CompiledModule),
	}

	for _, mod := range cfg.precompile {
		if _, err := e.getCompiled(ctx, mod); err != nil {
			e.Close()
			return nil, fmt.Errorf("precompile %s: %w", mod.Name(), err)
		}
	}

	return e, nil
}

// Call instantiates mod with the given mounts, calls fn once and tears the
// instance down again. Output mounts are collected into Result.Outputs.
func (e *Executor) Call(ctx context.Context, mod Module, fn string, params []uint64, opts ...Option) Result {
	start := time.Now()

	inst, err := e.Instantiate(ctx, mod, opts...)
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}

	result := inst.Call(ctx, fn, params...)

	outputs, err := inst.Outputs()
	result.Outputs = outputs
	if result.Error == nil && err != nil {
		result.Error = err
	}

	if err := inst.Close(); err != nil && result.Error == nil {
		result.Error = err
	}

	result.Duration = time.Since(start)
	return result
}

// Exec runs a command module's _start function with the given mounts, the
// way a CLI would run it. A zero exit code is success.
func (e *Executor) Exec(ctx context.Context, mod Module, opts ...Option) Result {
	start := time.Now()

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	compiled, err := e.getCompiled(ctx, mod)
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}

	dir, err := prepareMounts(cfg)
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}
	defer dir.Close()

	var stdout, stderr output
	args := append([]string{mod.Name()}, cfg.args...)
	moduleConfig := newModuleConfig(cfg, dir, &stdout, &stderr).WithArgs(args...)

	log := Logger().With(zap.String("module", mod.Name()))
	log.Debug("exec", zap.String("dir", dir.Path()), zap.Strings("args", args))

	instance, err := e.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if instance != nil {
		instance.Close(ctx)
	}

	result := Result{}
	if err != nil {
		var exitErr *sys.ExitError
		switch {
		case errors.As(err, &exitErr) && exitErr.ExitCode() == 0:
		case ctx.Err() == context.DeadlineExceeded:
			result.Error = fmt.Errorf("timeout after %v", cfg.timeout)
		case errors.As(err, &exitErr):
			result.Error = fmt.Errorf("exit code %d", exitErr.ExitCode())
		default:
			result.Error = fmt.Errorf("execution failed: %w", err)
		}
	}

	outputs, err := dir.Collect()
	result.Outputs = outputs
	if result.Error == nil && err != nil {
		result.Error = err
	}

	result.Output = stdout.String() + stderr.String()
	result.Duration = time.Since(start)
	if result.Error != nil {
		log.Debug("exec failed", zap.Error(result.Error))
	}
	return result
}

// Functions lists the functions mod exports, sorted by name.
func (e *Executor) Functions(ctx context.Context, mod Module) ([]Function, error) {
	compiled, err := e.getCompiled(ctx, mod)
	if err != nil {
		return nil, err
	}

	defs := compiled.ExportedFunctions()
	funcs := make([]Function, 0, len(defs))
	for name, def := range defs {
		funcs = append(funcs, Function{
			Name:    name,
			Params:  def.ParamTypes(),
			Results: def.ResultTypes(),
		})
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	return funcs, nil
}

// getCompiled returns a cached compiled module, compiling if necessary.
func (e *Executor) getCompiled(ctx context.Context, mod Module) (wazero.CompiledModule, error) {
	name := mod.Name()

	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, ErrExecutorClosed
	}
	if compiled, ok := e.compiled[name]; ok {
		e.mu.RUnlock()
		return compiled, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrExecutorClosed
	}
	if compiled, ok := e.compiled[name]; ok {
		return compiled, nil
	}

	start := time.Now()
	compiled, err := e.runtime.CompileModule(ctx, mod.Module())
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	Logger().Debug("compiled module",
		zap.String("module", name),
		zap.Duration("took", time.Since(start)))

	e.compiled[name] = compiled
	return compiled, nil
}

// Close releases all resources held by the Executor.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	ctx := context.Background()

	err := e.runtime.Close(ctx)
	if e.cache != nil {
		err = multierr.Append(err, e.cache.Close(ctx))
	}
	return err
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "mountio")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "mountio")
	}
	return filepath.Join(os.TempDir(), "mountio-cache")
}
