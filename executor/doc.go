// Package executor runs WebAssembly modules with mount files on wazero.
//
// # Overview
//
// The executor manages WASM module compilation, caching, and execution.
// Modules get WASI preview1 and nothing else: the only way data gets in or
// out is through mount files, which are staged into a private directory
// pre-opened as the module's root.
//
// # Basic Usage
//
//	exec, err := executor.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	mod, _ := executor.LoadModule("abc.wasm")
//	result := exec.Call(ctx, mod, "c", nil,
//	    executor.WithMount("outFile", "./result.txt", executor.StageOutput))
//	fmt.Println(result.Values[0].U32(), string(result.Outputs["outFile"]))
//
// # Instances
//
// An [Instance] keeps the module and its mount directory alive across calls:
//
//	inst, err := exec.Instantiate(ctx, mod,
//	    executor.WithMount("deployFile", "./model.bin", executor.StageDeployment),
//	    executor.WithMount("execFile", "./input.bin", executor.StageExecution),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close()
//
//	params, _ := executor.ParseParams(fn.Params, []string{"1", "2.5"})
//	inst.Call(ctx, "a", params...)
//
// # Command Modules
//
// [Executor.Exec] runs a module's _start function instead, for modules built
// as programs rather than libraries.
package executor

//go:generate sh -c "GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o testdata/abc.wasm ../cmd/abc"
//go:generate sh -c "GOOS=wasip1 GOARCH=wasm go build -o testdata/abcbin.wasm ../cmd/abcbin"
