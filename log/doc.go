// Package log provides leveled structured logging based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("loaded", slog.String("source", "scene.cfg"))
//
// # Configuration
//
// Loggers are configured at creation with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true),
//		log.WithPretty(true))
//
// [Logger.Wrap] derives a logger with some options overridden, and
// [Logger.With] derives one that adds attributes to every record. A Logger
// is a value; deriving never changes the original.
//
// The zero Logger is valid and discards everything, so types may embed or
// hold one without initializing it.
//
// # Levels
//
// The levels are [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn], and
// [LevelError]. Records below the configured level are discarded before any
// attribute is evaluated.
//
// # Formats
//
// [FormatJSON] (default) and [FormatText] use the [log/slog] handlers. With
// [WithPretty], records are instead rendered with colors for a terminal:
// text as key=value pairs on one line, JSON as one indented key per line.
//
// # Default Logger
//
// The package-level functions ([Info], [ErrorContext], ...) write through a
// default logger that writes to standard error. Use [Config] to reconfigure
// it and [SetDefault] to replace it.
package log
