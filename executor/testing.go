package executor

import (
	"sync"
)

// A shared executor lets tests reuse compiled modules. Go-built wasm takes
// about a second to compile, which adds up across tests.
var (
	testExecutor     *Executor
	testExecutorOnce sync.Once
	testExecutorErr  error
	testExecutorMu   sync.Mutex
)

// GetTestExecutor returns a shared executor for testing.
// The executor is created once and reused.
func GetTestExecutor() (*Executor, error) {
	testExecutorMu.Lock()
	defer testExecutorMu.Unlock()

	testExecutorOnce.Do(func() {
		testExecutor, testExecutorErr = New()
	})
	return testExecutor, testExecutorErr
}

// CloseTestExecutor closes the shared test executor.
// Call this in TestMain if needed, but typically not necessary.
func CloseTestExecutor() {
	testExecutorMu.Lock()
	defer testExecutorMu.Unlock()

	if testExecutor != nil {
		testExecutor.Close()
		testExecutor = nil
		testExecutorOnce = sync.Once{} // Reset for next test run
	}
}
