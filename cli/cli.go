package cli

import (
	"context"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/cli/cmd"
	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/pkg"
)

// CLI is the top-level command-line interface for blockcfg.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path     string        `env:"BLOCKCFG_PATH"   help:"Directories searched for relative source names (${pathListSeparator}-separated)." placeholder:"DIRS"`
	MaxDepth int           `default:"${maxDepth}" help:"Maximum struct nesting depth."`
	Color    cmd.ColorMode `default:"auto"        enum:"auto,always,never" help:"Style diagnostics (${enum})."`

	Version kong.VersionFlag `help:"Print version and exit."`

	Check  cmd.Check  `cmd:"" help:"Parse sources and report the first error of each."`
	Fmt    cmd.Fmt    `cmd:"" help:"Format a source."`
	Get    cmd.Get    `cmd:"" help:"Print the value at a path."`
	Query  cmd.Query  `cmd:"" help:"Evaluate an expression against a source."`
	Browse cmd.Browse `cmd:"" help:"Browse the paths of a source interactively."`
	Init   cmd.Init   `cmd:"" help:"Initialize configuration file."`
}

// Run executes the blockcfg CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + pkg.Extension)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"pathListSeparator":  string(os.PathListSeparator),
		"version":            pkg.Version,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(ctx, configFilePath), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSettings(ctx, cmd.Settings{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		SearchPath: searchPath(cli.Path),
		CacheDir:   pkg.CacheDir(),
		MaxDepth:   cli.MaxDepth,
		Color:      cli.Color.Enabled(os.Stdout),
	})

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
