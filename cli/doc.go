// Package cli contains the command line interface for blockcfg.
//
// # Usage
//
//	blockcfg [flags] <command> [args]
//
// Commands:
//   - check: parse sources and report the first syntax error of each
//   - fmt: format a source natively, as a tree, or as JSON, YAML, or TOML
//   - get: print the value at a path such as anim.walk.0.tex
//   - query: evaluate an expression against a source
//   - browse: filter the paths of a source interactively
//   - init: write the current flags to the configuration file
//
// Relative source names are looked up in the current directory, then in
// the directories listed by --path (or BLOCKCFG_PATH), then in the
// configuration directory. The ".blk" extension may be omitted.
//
// # Configuration
//
// Flags are also read from config.blk in the configuration directory,
// written in blockcfg syntax. A flag of a group lives in the category of
// that group:
//
//	max_depth 50
//
//	[log]
//	level "debug"
//	format "text"
//
// # Logging Options
//
//   - --log-level: minimum log level (trace, debug, info, warn, error)
//   - --log-format: log output format (json, text)
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: include caller information
//   - --log-pretty: colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o blockcfg .
//
//   - --pprof-mode: enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory (default: <cache>/pprof)
package cli
