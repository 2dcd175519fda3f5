package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wasmiot/mountio/executor"
)

var callCmd = &cobra.Command{
	Use:   "call <module.wasm> <function> [params...]",
	Short: "Call an exported function once",
	Long: `Instantiate a module, call one exported function and print its results.

Params are parsed against the function's signature: i32 and i64 accept
signed, unsigned or 0x-prefixed integers, f32 and f64 accept decimals.

Examples:
  mountio call abc.wasm a 1 2.5 \
    --mount deployment:deployFile:./model.bin \
    --mount execution:execFile:./input.bin
  mountio call abc.wasm c --mount output:outFile:./result.txt`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCall,
}

func init() {
	addMountFlags(callCmd)
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	exec, mod, err := newExecutor(cmd, args[0])
	if err != nil {
		return err
	}
	defer exec.Close()

	ctx := context.Background()
	name := args[1]

	funcs, err := exec.Functions(ctx, mod)
	if err != nil {
		return err
	}
	fn, ok := findFunction(funcs, name)
	if !ok {
		return fmt.Errorf("%w: %s", executor.ErrFunctionNotFound, name)
	}

	params, err := executor.ParseParams(fn.Params, args[2:])
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}

	result := exec.Call(ctx, mod, name, params, buildRunOpts(cmd)...)
	printResult(cmd.OutOrStdout(), name, result)
	return result.Error
}

func findFunction(funcs []executor.Function, name string) (executor.Function, bool) {
	for _, fn := range funcs {
		if fn.Name == name {
			return fn, true
		}
	}
	return executor.Function{}, false
}

func printResult(w io.Writer, name string, result executor.Result) {
	fmt.Fprint(w, result.Output)
	if result.Error != nil {
		return
	}

	switch len(result.Values) {
	case 0:
	case 1:
		fmt.Fprintf(w, "%s(): %s\n", name, result.Values[0])
	default:
		fmt.Fprintf(w, "%s(): %v\n", name, result.Values)
	}
	printOutputs(w, result.Outputs)
}

func printOutputs(w io.Writer, outputs map[string][]byte) {
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "file '%s' contains: '%s'\n", name, outputs[name])
	}
}
