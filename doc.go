// Package mountio runs WebAssembly modules whose only I/O is mount files.
//
// # Overview
//
// A module gets WASI preview1 and nothing else. Before it runs, the host copies
// its deployment and execution files into a private directory that the module
// sees as its root. Files the module writes there are collected as output
// mounts once it is done.
//
// The repository has two halves:
//
//   - abc: the guest logic. Function a reads the two input mounts and turns
//     them into a negative number, b returns a constant and c writes "42" to
//     the output mount. cmd/abc exports them from a wasip1 reactor and
//     cmd/abcbin calls them from a wasip1 command.
//   - mount and executor: the host. mount stages and collects files,
//     executor compiles modules with wazero and calls them.
//
// # Basic Usage
//
//	exec, _ := executor.New()
//	defer exec.Close()
//
//	mod, _ := executor.LoadModule("abc.wasm")
//	result := exec.Call(ctx, mod, "a", params,
//	    executor.WithMount("deployFile", "./model.bin", executor.StageDeployment),
//	    executor.WithMount("execFile", "./input.bin", executor.StageExecution))
//	fmt.Println(result.Values[0])
//
// # Sentinels
//
// The guest reports failures through its return values:
//
//	-1337  a could not read deployFile
//	-2337  a could not read execFile
//	  404  c could not write outFile
//
// # CLI
//
//	mountio funcs abc.wasm
//	mountio call abc.wasm a 1 2.5 --mount deployment:deployFile:./model.bin ...
//	mountio exec abcbin.wasm --mount output:outFile ...
//	mountio repl abc.wasm --mount output:outFile
package mountio
