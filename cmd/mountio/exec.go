package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wasmiot/mountio/executor"
)

var execCmd = &cobra.Command{
	Use:   "exec <module.wasm> [-- args...]",
	Short: "Run a command module",
	Long: `Run a module's _start function the way a shell would run a program.

The module's stdout and stderr are printed, followed by the content of
every output mount. A non-zero exit code fails the command.

Example:
  mountio exec abcbin.wasm \
    --mount deployment:deployFile:./model.bin \
    --mount execution:execFile:./input.bin \
    --mount output:outFile`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	addMountFlags(execCmd)
	rootCmd.AddCommand(execCmd)
}

func runExec(cmd *cobra.Command, args []string) error {
	exec, mod, err := newExecutor(cmd, args[0])
	if err != nil {
		return err
	}
	defer exec.Close()

	opts := append(buildRunOpts(cmd), executor.WithArgs(args[1:]...))
	result := exec.Exec(context.Background(), mod, opts...)

	w := cmd.OutOrStdout()
	fmt.Fprint(w, result.Output)
	printOutputs(w, result.Outputs)
	return result.Error
}
