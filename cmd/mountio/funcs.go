package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var funcsCmd = &cobra.Command{
	Use:   "funcs <module.wasm>",
	Short: "List exported functions",
	Args:  cobra.ExactArgs(1),
	RunE:  runFuncs,
}

func init() {
	rootCmd.AddCommand(funcsCmd)
}

func runFuncs(cmd *cobra.Command, args []string) error {
	exec, mod, err := newExecutor(cmd, args[0])
	if err != nil {
		return err
	}
	defer exec.Close()

	funcs, err := exec.Functions(context.Background(), mod)
	if err != nil {
		return err
	}
	for _, fn := range funcs {
		fmt.Fprintln(cmd.OutOrStdout(), fn)
	}
	return nil
}
