// Package profile provides optional runtime profiling for the blockcfg
// command.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] with conditional
// compilation. Profiling must be enabled at build time using the "pprof"
// build tag:
//
//	go build -tags pprof -o blockcfg .
//
// When built without the tag, [Modes] is empty and [Config.Start] returns a
// no-op with zero runtime overhead.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	).Start()
//	defer p.Stop()
//
// Profile files are written to the configured directory with names matching
// the profiling mode (e.g., cpu.pprof, mem.pprof). From the command line:
//
//	blockcfg --pprof-mode cpu check big.blk
//	go tool pprof -http=: ~/.cache/blockcfg/pprof/cpu.pprof
//
// # HTTP-Based Profiling
//
// When built with the pprof tag, this package imports [net/http/pprof],
// which registers its handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
