package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wasmiot/mountio/executor"
	"github.com/wasmiot/mountio/mount"
)

var rootCmd = &cobra.Command{
	Use:   "mountio",
	Short: "Run WebAssembly modules with mounted files",
	Long: `mountio - Run WebAssembly modules whose only I/O is mounted files.

Modules get WASI and nothing else. Deployment and execution files are
copied into a private directory the module sees as its root; output
files the module writes there are collected afterwards.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable compilation cache")
	rootCmd.PersistentFlags().String("memory", "256mb", "Memory limit: 1mb, 16mb, 64mb, 256mb, 1gb")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log runtime activity to stderr")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	executor.SetLogger(logger)
	return nil
}

// mountsValue collects repeated --mount stage:name:hostpath flags.
type mountsValue []mount.Mount

var _ pflag.Value = (*mountsValue)(nil)

func (m *mountsValue) String() string {
	specs := make([]string, len(*m))
	for i, mt := range *m {
		specs[i] = mt.Stage.String() + ":" + mt.Name + ":" + mt.HostPath
	}
	return strings.Join(specs, ",")
}

func (m *mountsValue) Set(v string) error {
	mt, err := parseMount(v)
	if err != nil {
		return err
	}
	*m = append(*m, mt)
	return nil
}

func (m *mountsValue) Type() string { return "stage:name:path" }

func parseMount(spec string) (mount.Mount, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 {
		return mount.Mount{}, fmt.Errorf("invalid mount spec %q (expected stage:name:path)", spec)
	}

	stage, err := mount.ParseStage(parts[0])
	if err != nil {
		return mount.Mount{}, err
	}

	m := mount.Mount{Name: parts[1], Stage: stage}
	if len(parts) == 3 {
		m.HostPath = parts[2]
	}
	if m.Input() && m.HostPath == "" {
		return mount.Mount{}, fmt.Errorf("invalid mount spec %q: %s mount needs a host path", spec, stage)
	}
	if err := mount.Validate([]mount.Mount{m}); err != nil {
		return mount.Mount{}, err
	}
	return m, nil
}

func parseMemoryLimit(s string) uint32 {
	switch strings.ToLower(s) {
	case "1mb":
		return executor.MemoryLimit1MB
	case "16mb":
		return executor.MemoryLimit16MB
	case "64mb":
		return executor.MemoryLimit64MB
	case "256mb":
		return executor.MemoryLimit256MB
	case "1gb":
		return executor.MemoryLimit1GB
	default:
		return 0 // use default
	}
}

func addMountFlags(cmd *cobra.Command) {
	cmd.Flags().Var(&mountsValue{}, "mount", "Mount file stage:name:path, stage is deployment, execution or output (repeatable)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Execution timeout")
	cmd.Flags().Int64("max-file", 10*1024*1024, "Max mount file size")
	cmd.Flags().StringToString("env", nil, "Environment variable KEY=VALUE visible to the module (repeatable)")
}

func buildRunOpts(cmd *cobra.Command) []executor.Option {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	maxFile, _ := cmd.Flags().GetInt64("max-file")
	env, _ := cmd.Flags().GetStringToString("env")

	opts := []executor.Option{executor.WithTimeout(timeout)}
	if v, ok := cmd.Flags().Lookup("mount").Value.(*mountsValue); ok && len(*v) > 0 {
		opts = append(opts, executor.WithMounts(*v...))
	}
	if maxFile > 0 {
		opts = append(opts, executor.WithMaxFileSize(maxFile))
	}
	for k, v := range env {
		opts = append(opts, executor.WithEnv(k, v))
	}
	return opts
}

// newExecutor loads the module and creates an executor for it.
func newExecutor(cmd *cobra.Command, path string) (*executor.Executor, executor.Module, error) {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	memoryLimit, _ := cmd.Flags().GetString("memory")

	mod, err := executor.LoadModule(path)
	if err != nil {
		return nil, nil, err
	}

	var execOpts []executor.ExecutorOption
	if !noCache {
		execOpts = append(execOpts, executor.WithDiskCache())
	}
	if pages := parseMemoryLimit(memoryLimit); pages > 0 {
		execOpts = append(execOpts, executor.WithMemoryLimit(pages))
	}

	exec, err := executor.New(execOpts...)
	if err != nil {
		return nil, nil, err
	}
	return exec, mod, nil
}
