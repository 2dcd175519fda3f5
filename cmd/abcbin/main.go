// Command abcbin calls the abc functions and prints their results, reading
// the output mount back to show what c() wrote.
//
// Runs natively or as a WASI command:
//
//	GOOS=wasip1 GOARCH=wasm go build -o abcbin.wasm ./cmd/abcbin
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wasmiot/mountio/abc"
)

func main() {
	if err := run(os.Stdout, abc.Default); err != nil {
		fmt.Fprintf(os.Stderr, "abcbin: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, m *abc.Mounts) error {
	fmt.Fprintf(w, "a(): %d\n", m.A(1, 2.5))
	fmt.Fprintf(w, "b(): %v\n", abc.B())

	coutval := m.C()
	coutfile, err := os.ReadFile(filepath.Join(m.Dir, abc.OutputFile))
	if err != nil {
		return fmt.Errorf("read back %s: %w", abc.OutputFile, err)
	}

	fmt.Fprintf(w, "c(): %d, file '%s' contains: '%s'\n", coutval, abc.OutputFile, coutfile)
	return nil
}
