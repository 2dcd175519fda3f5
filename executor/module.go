package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Module is a WebAssembly binary the executor can compile and run.
type Module interface {
	// Name returns a unique identifier for the module.
	// Used as the cache key for compiled modules.
	Name() string

	// Module returns the WASM binary.
	Module() []byte
}

type bytesModule struct {
	name string
	wasm []byte
}

func (m *bytesModule) Name() string   { return m.name }
func (m *bytesModule) Module() []byte { return m.wasm }

// NewModule wraps an in-memory WASM binary.
func NewModule(name string, wasm []byte) Module {
	return &bytesModule{name: name, wasm: wasm}
}

// LoadModule reads a WASM binary from disk. The module is named after the
// file without its extension.
func LoadModule(path string) (Module, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load module: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewModule(name, wasm), nil
}
