// Package cmd provides the subcommands of the blockcfg command: check, fmt,
// get, query, browse, and init.
//
// Commands receive a [context.Context] carrying the parsed [kong.Context]
// ([WithContext]) and the global [Settings] ([WithSettings]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
