// Package abc implements a small WebAssembly test module that demonstrates
// file-mount I/O without any non-WASI host imports.
//
// The host is expected to make three files available relative to the
// module's working directory:
//
//   - deployFile: read by [A], mounted at deployment time
//   - execFile: read by [A], mounted per execution
//   - outFile: written by [C]
//
// # Exported Functions
//
// [A], [B] and [C] take and return only primitive numeric types so they can
// be exported across the wasm ABI boundary (see cmd/abc). Failures are
// flattened into fixed sentinel codes:
//
//	-1337  reading deployFile failed
//	-2337  reading execFile failed
//	  404  writing outFile failed
//
// A caller holding Go values can use [Mounts.Sum] and [Mounts.WriteOutput]
// instead, which return a typed [*MountError].
package abc
