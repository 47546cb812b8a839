//go:build !pprof

package profile

// Modes returns nil when built without tag pprof.
func Modes() []string { return nil }

func supported(string) bool { return false }

func start(Config) interface{ Stop() } { return ignore{} }
