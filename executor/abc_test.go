package executor_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wasmiot/mountio/executor"
)

// The abc fixtures are built from cmd/abc and cmd/abcbin by go generate.
func loadFixture(t *testing.T, name string) executor.Module {
	t.Helper()
	mod, err := executor.LoadModule(filepath.Join("testdata", name))
	if err != nil {
		t.Skipf("%s not built (run go generate ./executor): %v", name, err)
	}
	return mod
}

func sharedExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	exec, err := executor.GetTestExecutor()
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	return exec
}

func writeMountFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mount")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func inputMounts(t *testing.T, deploy, exec string) []executor.Option {
	return []executor.Option{
		executor.WithMount("deployFile", writeMountFile(t, deploy), executor.StageDeployment),
		executor.WithMount("execFile", writeMountFile(t, exec), executor.StageExecution),
	}
}

func TestABCReadsMounts(t *testing.T) {
	mod := loadFixture(t, "abc.wasm")
	exec := sharedExecutor(t)
	ctx := context.Background()

	result := exec.Call(ctx, mod, "a", []uint64{1, 0x40200000}, inputMounts(t, "d", "e")...)
	if result.Error != nil {
		t.Fatalf("call a failed: %v\n%s", result.Error, result.Output)
	}
	first := result.Values[0].I32()
	if first >= 0 {
		t.Errorf("expected negative result, got %d", first)
	}

	result = exec.Call(ctx, mod, "a", []uint64{1, 0x40200000}, inputMounts(t, "d", "changed")...)
	if result.Error != nil {
		t.Fatalf("call a failed: %v", result.Error)
	}
	if result.Values[0].I32() == first {
		t.Error("expected execFile content to change the result")
	}
}

func TestABCSentinels(t *testing.T) {
	mod := loadFixture(t, "abc.wasm")
	exec := sharedExecutor(t)
	ctx := context.Background()

	result := exec.Call(ctx, mod, "a", []uint64{1, 0x40200000})
	if result.Error != nil {
		t.Fatalf("call a failed: %v", result.Error)
	}
	if got := result.Values[0].I32(); got != -1337 {
		t.Errorf("expected -1337 without deployFile, got %d", got)
	}
	if !strings.Contains(result.Output, "Deploy") {
		t.Errorf("expected diagnostic on stderr, got %q", result.Output)
	}

	result = exec.Call(ctx, mod, "a", []uint64{1, 0x40200000},
		executor.WithMount("deployFile", writeMountFile(t, "d"), executor.StageDeployment))
	if got := result.Values[0].I32(); got != -2337 {
		t.Errorf("expected -2337 without execFile, got %d", got)
	}

	// No output mount declared: the root is read-only.
	result = exec.Call(ctx, mod, "c", nil)
	if got := result.Values[0].U32(); got != 404 {
		t.Errorf("expected 404 without write permission, got %d", got)
	}
}

func TestABCWritesOutput(t *testing.T) {
	mod := loadFixture(t, "abc.wasm")
	exec := sharedExecutor(t)
	dest := filepath.Join(t.TempDir(), "result.txt")

	result := exec.Call(context.Background(), mod, "c", nil,
		executor.WithMount("outFile", dest, executor.StageOutput))
	if result.Error != nil {
		t.Fatalf("call c failed: %v", result.Error)
	}
	if got := result.Values[0].U32(); got != 2147483647 {
		t.Errorf("expected 2147483647, got %d", got)
	}
	if got := string(result.Outputs["outFile"]); got != "42" {
		t.Errorf("expected outFile '42', got %q", got)
	}

	copied, _ := os.ReadFile(dest)
	if string(copied) != "42" {
		t.Errorf("expected output copied to host, got %q", copied)
	}
}

func TestABCBinEndToEnd(t *testing.T) {
	mod := loadFixture(t, "abcbin.wasm")
	exec := sharedExecutor(t)

	opts := append(inputMounts(t, "d", "e"), executor.WithMount("outFile", "", executor.StageOutput))
	result := exec.Exec(context.Background(), mod, opts...)
	if result.Error != nil {
		t.Fatalf("exec failed: %v\n%s", result.Error, result.Output)
	}

	for _, want := range []string{"a(): -", "b(): 4.2", "c(): 2147483647, file 'outFile' contains: '42'"} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("expected output to contain %q, got %q", want, result.Output)
		}
	}
	if string(result.Outputs["outFile"]) != "42" {
		t.Errorf("expected outFile '42', got %q", result.Outputs["outFile"])
	}
}

func TestABCBinAbortsWithoutOutput(t *testing.T) {
	mod := loadFixture(t, "abcbin.wasm")
	exec := sharedExecutor(t)

	// Read-only root: c() fails and reading outFile back aborts the driver.
	result := exec.Exec(context.Background(), mod, inputMounts(t, "d", "e")...)
	if result.Error == nil {
		t.Fatal("expected driver to abort")
	}
	if !strings.Contains(result.Error.Error(), "exit code") {
		t.Errorf("expected non-zero exit, got %v", result.Error)
	}
}
