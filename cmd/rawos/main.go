package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/desertwitch/rawos/internal/args"
	"github.com/desertwitch/rawos/internal/configuration"
	"github.com/desertwitch/rawos/internal/fd"
	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/kernel"
	"github.com/desertwitch/rawos/internal/process"
)

const (
	stackTraceBufMax = 1 << 24
	stdoutFd         = 1
)

//nolint:gochecknoglobals
var (
	Version string

	configFile = flag.String("config", configuration.DefaultFile, "read configuration from this file")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

// profileFiles creates profile files through the raw filesystem layer.
type profileFiles struct {
	fs *filesystem.Handler
}

// Create creates or truncates the profile file at path.
func (p profileFiles) Create(path string) (io.WriteCloser, error) {
	f, err := p.fs.Create(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()

	sigChan2 := make(chan os.Signal, 1)
	signal.Notify(sigChan2, syscall.SIGUSR1)
	go func() {
		for range sigChan2 {
			buf := make([]byte, stackTraceBufMax)
			stacklen := runtime.Stack(buf, true)
			os.Stderr.Write(buf[:stacklen])
		}
	}()
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	argv := args.All().Strings()
	if len(argv) > 0 {
		argv = argv[1:]
	}

	flag.CommandLine.SetOutput(os.Stderr)
	if err := flag.CommandLine.Parse(argv); err != nil {
		return exitUsage
	}

	logs := newLogRouter()
	logs.AddHandler("terminal", newTerminalHandler(os.Stderr, slog.LevelInfo))
	slog.SetDefault(slog.New(logs))

	configHandler := configuration.NewHandler(&configuration.GodotenvProvider{}, &configuration.OSEnvProvider{})

	cfg, err := configHandler.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load the configuration.",
			"file", *configFile,
			"err", err,
		)

		return exitError
	}
	logs.AddHandler("terminal", newTerminalHandler(os.Stderr, cfg.LogLevel))

	setupSignalHandlers(cancel)

	fsHandler := filesystem.NewHandler(kernel.Default)

	memObserver := newMemoryObserver(ctx)
	cpuProfiler := NewCPUProfiler(ctx, profileFiles{fsHandler}, *cpuprofile)
	allocProfiler := NewAllocProfiler(ctx, profileFiles{fsHandler}, *memprofile)

	process.RegisterCleanup(memObserver.Stop)
	process.RegisterCleanup(cpuProfiler.Stop)
	process.RegisterCleanup(allocProfiler.Stop)

	stdout := fsHandler.FromFd(fd.Borrow(kernel.Default, stdoutFd))

	slog.Debug("Starting rawos",
		"version", Version,
		"uiEnabled", cfg.UI,
		"verifyCopy", cfg.VerifyCopy,
	)

	app := NewApp(cfg, fsHandler, logs, stdout, os.Stderr)

	return app.Run(ctx, flag.CommandLine.Args())
}

func main() {
	args.InitStrings(os.Args)

	process.Exit(run())
}
