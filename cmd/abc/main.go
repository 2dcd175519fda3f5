//go:build wasip1

// Command abc exports the abc functions from a WASI reactor module.
//
// Build with: GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o abc.wasm ./cmd/abc
package main

import "github.com/wasmiot/mountio/abc"

//go:wasmexport a
func a(p0 uint32, p1 float32) int32 {
	return abc.A(p0, p1)
}

//go:wasmexport b
func b() float32 {
	return abc.B()
}

//go:wasmexport c
func c() uint32 {
	return abc.C()
}

func main() {}
