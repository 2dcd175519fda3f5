package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/wasmiot/mountio/executor"
)

var replCmd = &cobra.Command{
	Use:   "repl <module.wasm>",
	Short: "Call functions interactively on one instance",
	Long: `Start an interactive session on a single module instance.

Each line is a function name followed by its params, e.g. 'a 1 2.5'.
The mounts stay in place for the whole session, so files written by
one call can be read by the next.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - History search (Ctrl+R)

Commands:
  funcs            list exported functions
  mounts           list mounts and their stages
  outputs          show and collect output mounts
  cat <name>       print a mount file

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepl,
}

func init() {
	addMountFlags(replCmd)
	replCmd.Flags().String("history", "", "History file path (default: ~/.mountio_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".mountio_history")
	}

	exec, mod, err := newExecutor(cmd, args[0])
	if err != nil {
		return err
	}
	defer exec.Close()

	ctx := context.Background()
	inst, err := exec.Instantiate(ctx, mod, buildRunOpts(cmd)...)
	if err != nil {
		return fmt.Errorf("starting instance: %w", err)
	}
	defer inst.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            ">>> ",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(os.Stderr, "mountio %s REPL (type 'exit' to quit, Ctrl+D to exit)\n", mod.Name())

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println()
				break
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := evalLine(ctx, rl.Stdout(), exec, mod, inst, line); err != nil {
			fmt.Fprintf(rl.Stderr(), "Error: %v\n", err)
		}
	}
	return nil
}

// evalLine runs one REPL command against inst.
func evalLine(ctx context.Context, w io.Writer, exec *executor.Executor, mod executor.Module, inst *executor.Instance, line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "funcs":
		funcs, err := exec.Functions(ctx, mod)
		if err != nil {
			return err
		}
		for _, fn := range funcs {
			fmt.Fprintln(w, fn)
		}
		return nil
	case "mounts":
		for _, m := range inst.Mounts() {
			fmt.Fprintf(w, "%-10s %s %s\n", m.Stage, m.Name, m.HostPath)
		}
		return nil
	case "outputs":
		outputs, err := inst.Outputs()
		if err != nil {
			return err
		}
		printOutputs(w, outputs)
		return nil
	case "cat":
		if len(fields) != 2 {
			return fmt.Errorf("usage: cat <name>")
		}
		data, err := inst.ReadMount(fields[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", data)
		return nil
	}

	fn, err := inst.Function(fields[0])
	if err != nil {
		return err
	}
	params, err := executor.ParseParams(fn.Params, fields[1:])
	if err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}

	result := inst.Call(ctx, fn.Name, params...)
	printResult(w, fn.Name, result)
	return result.Error
}
