// Command tapmusic-dl saves a last.fm listening collage rendered by tapmusic.net.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/tapmusic-collage/internal/config"
	"github.com/handiism/tapmusic-collage/internal/download"
	"github.com/handiism/tapmusic-collage/internal/model"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK        = 0
	exitCollision = 1
	exitUsage     = 2
	exitFetch     = 3
	exitPersist   = 4
)

const usage = "tapmusic-dl [options] <user> <size:3|4|5|10> <time:7d|1m|3m|6m|12m|all> <directory>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("tapmusic-dl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	var (
		caption    = fs.StringP("caption", "c", "t", "display album/artist captions in the collage (t|f)")
		playcount  = fs.StringP("playcount", "p", "t", "display album/artist playcount in the collage (t|f)")
		filename   = fs.StringP("filename", "f", "", "save the collage under a custom file name")
		configPath = fs.String("config", "", "settings file (default: user config dir)")
		timeout    = fs.Int("timeout", 0, "request timeout in seconds (default from settings)")
		mkdir      = fs.Bool("mkdir", false, "create the directory if it does not exist")
		maxSize    = fs.Int("max-size", 0, "scale the collage down to fit NxN pixels (0 keeps the bytes as-is)")
		logLevel   = new(slog.LevelVar)
		logJSON    = fs.Bool("log-json", false, "use json logs")
		help       = fs.BoolP("help", "h", false, "show this help text")
	)
	fs.TextVarP(logLevel, "log-level", "L", new(slog.LevelVar), "log level")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s\n%s", usage, fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitUsage
	}
	if *help {
		fmt.Fprintf(stdout, "usage: %s\n%s", usage, fs.FlagUsages())
		return exitOK
	}

	logger := newLogger(stderr, logLevel, *logJSON)

	if fs.NArg() != 4 {
		logger.Error("expected 4 arguments", "got", fs.NArg())
		fs.Usage()
		return exitUsage
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		return exitUsage
	}
	if fs.Changed("timeout") {
		settings.TimeoutSeconds = *timeout
	}
	if *mkdir {
		settings.CreateDirectory = true
	}
	if fs.Changed("max-size") {
		settings.MaxSize = *maxSize
	}
	if fs.Changed("caption") {
		if settings.ShowCaption, err = model.ParseFlag("caption", *caption); err != nil {
			return report(logger, err)
		}
	}
	if fs.Changed("playcount") {
		if settings.ShowPlaycount, err = model.ParseFlag("playcount", *playcount); err != nil {
			return report(logger, err)
		}
	}
	if err := settings.Validate(); err != nil {
		logger.Error("invalid settings", "error", err)
		return exitUsage
	}

	user, size, period, dir := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	req, err := model.NewCollageRequest(user, size, period, settings.ShowCaption, settings.ShowPlaycount)
	if err != nil {
		return report(logger, err)
	}

	target, err := model.ResolveTarget(dir, req, *filename, time.Now(), settings.ToPathConfig())
	if err != nil {
		return report(logger, err)
	}

	manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
		logger.Log(ctx, slogLevel(event.Level), event.Message)
	})
	if err != nil {
		logger.Error("failed to set up http client", "error", err)
		return exitUsage
	}

	result, err := manager.Run(ctx, req, target)
	if err != nil {
		return report(logger, err)
	}

	fmt.Fprintln(stdout, result.Path)
	return exitOK
}

// report logs err and returns the exit code for its kind.
func report(logger *slog.Logger, err error) int {
	kind := download.Kind(err)
	switch kind {
	case download.KindInvalidArgument:
		logger.Error("invalid argument", "error", err)
		return exitUsage
	case download.KindOutputCollision:
		var ce *download.CollisionError
		if errors.As(err, &ce) {
			logger.Error("output file already exists", "path", ce.Path)
		} else {
			logger.Error("output file already exists", "error", err)
		}
		return exitCollision
	case download.KindFetchFailed:
		logger.Error("failed to fetch collage", "error", err)
		return exitFetch
	default:
		logger.Error("failed to save collage", "kind", string(kind), "error", err)
		return exitPersist
	}
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.DefaultSettings(), nil
		}
		path = p
	}
	return config.Load(path)
}

func newLogger(w io.Writer, level *slog.LevelVar, json bool) *slog.Logger {
	if json {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTTY(w),
	}))
}

func slogLevel(level download.ProgressLevel) slog.Level {
	switch level {
	case download.LevelVerbose:
		return slog.LevelDebug
	case download.LevelWarning:
		return slog.LevelWarn
	case download.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
