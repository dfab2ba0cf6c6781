// Package log provides the application-wide structured logger.
//
// Call sites use variadic key/value pairs:
//
//	log.Info("Device discovered", "ip", ip, "mac", mac)
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var logger = newLogger(zerolog.InfoLevel, os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))

// Configure sets the global log level and output format.
// Level is one of trace, debug, info, warn, error. Format is "console",
// "json" or "auto"; auto picks console when stderr is a terminal.
func Configure(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := false
	switch format {
	case "console":
		console = true
	case "json":
		console = false
	default:
		console = term.IsTerminal(int(os.Stderr.Fd()))
	}

	logger = newLogger(lvl, os.Stderr, console)
}

func newLogger(lvl zerolog.Level, out io.Writer, console bool) zerolog.Logger {
	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func Trace(msg string, keyvals ...any) { emit(logger.Trace(), msg, keyvals) }
func Debug(msg string, keyvals ...any) { emit(logger.Debug(), msg, keyvals) }
func Info(msg string, keyvals ...any)  { emit(logger.Info(), msg, keyvals) }
func Warn(msg string, keyvals ...any)  { emit(logger.Warn(), msg, keyvals) }
func Error(msg string, keyvals ...any) { emit(logger.Error(), msg, keyvals) }

// Fatal logs the message and exits with status 1.
func Fatal(msg string, keyvals ...any) { emit(logger.Fatal(), msg, keyvals) }

func emit(ev *zerolog.Event, msg string, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		switch v := keyvals[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case error:
			if key == "error" {
				ev = ev.Err(v)
			} else {
				ev = ev.AnErr(key, v)
			}
		case time.Duration:
			ev = ev.Dur(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	ev.Msg(msg)
}
