package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/desertwitch/rawos/internal/aferofs"
	"github.com/desertwitch/rawos/internal/configuration"
	"github.com/desertwitch/rawos/internal/filesystem"
	"github.com/desertwitch/rawos/internal/integrity"
	"github.com/desertwitch/rawos/internal/ui"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// App runs the rawos commands.
type App struct {
	cfg           *configuration.Config
	fsHandler     *filesystem.Handler
	aferoFs       *aferofs.Fs
	integrityOps  *integrity.Handler
	logs          *logRouter
	stdout        io.Writer
	stderr        io.Writer
	browserLaunch func(ctx context.Context, cancel context.CancelFunc, root string) error
}

// NewApp returns a pointer to a new [App] writing command output to stdout
// and usage text to stderr.
func NewApp(cfg *configuration.Config, fsHandler *filesystem.Handler, logs *logRouter, stdout, stderr io.Writer) *App {
	app := &App{
		cfg:          cfg,
		fsHandler:    fsHandler,
		aferoFs:      aferofs.New(fsHandler),
		integrityOps: integrity.NewHandler(fsHandler),
		logs:         logs,
		stdout:       stdout,
		stderr:       stderr,
	}
	app.browserLaunch = app.launchBrowser

	return app
}

type command struct {
	usage string
	run   func(app *App, ctx context.Context, flags *flag.FlagSet, args []string) error
	flags func(flags *flag.FlagSet)
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"ls":       {usage: "ls [-l] [DIR...]", run: (*App).runLs, flags: lsFlags},
	"cat":      {usage: "cat FILE...", run: (*App).runCat},
	"cp":       {usage: "cp [-verify] FROM TO", run: (*App).runCp, flags: cpFlags},
	"stat":     {usage: "stat [-L] PATH...", run: (*App).runStat, flags: statFlags},
	"readlink": {usage: "readlink PATH...", run: (*App).runReadlink},
	"mkdir":    {usage: "mkdir [-m MODE] [-p] DIR...", run: (*App).runMkdir, flags: mkdirFlags},
	"rmdir":    {usage: "rmdir DIR...", run: (*App).runRmdir},
	"rm":       {usage: "rm PATH...", run: (*App).runRm},
	"mv":       {usage: "mv FROM TO", run: (*App).runMv},
	"ln":       {usage: "ln [-s] TARGET LINK", run: (*App).runLn, flags: lnFlags},
	"chmod":    {usage: "chmod MODE PATH...", run: (*App).runChmod},
	"sum":      {usage: "sum FILE...", run: (*App).runSum},
	"tree":     {usage: "tree [DIR]", run: (*App).runTree},
	"args":     {usage: "args", run: (*App).runArgs},
	"browse":   {usage: "browse [DIR]", run: (*App).runBrowse},
}

func (app *App) printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	fmt.Fprintln(app.stderr, "usage: rawos [-config FILE] [-cpuprofile FILE] [-memprofile FILE] COMMAND [ARGS]")
	fmt.Fprintln(app.stderr, "commands:")
	for _, name := range names {
		fmt.Fprintln(app.stderr, "  "+commands[name].usage)
	}
}

// Run executes the command line argv, the first element being the command
// name, and returns the process exit code.
func (app *App) Run(ctx context.Context, argv []string) int {
	if len(argv) == 0 {
		app.printUsage()

		return exitUsage
	}

	name, rest := argv[0], argv[1:]

	cmd, ok := commands[name]
	if !ok {
		slog.Error("Failed to run command.",
			"command", name,
			"err", ErrUnknownCommand,
		)
		app.printUsage()

		return exitUsage
	}

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(app.stderr)
	flags.Usage = func() {
		fmt.Fprintln(app.stderr, "usage: rawos "+cmd.usage)
		flags.PrintDefaults()
	}
	if cmd.flags != nil {
		cmd.flags(flags)
	}

	if err := flags.Parse(rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	if err := cmd.run(app, ctx, flags, flags.Args()); err != nil {
		if errors.Is(err, ErrUsage) {
			flags.Usage()

			return exitUsage
		}

		slog.Error("Command failed.",
			"command", strings.Join(argv, " "),
			"err", err,
		)

		return exitError
	}

	return exitOK
}

func (app *App) launchBrowser(ctx context.Context, cancel context.CancelFunc, root string) error {
	uiHandler := ui.NewHandler(ctx, cancel, app.fsHandler, root)

	app.logs.RemoveHandler("terminal")
	app.logs.AddHandler("ui", newTerminalHandler(uiHandler.LogWriter, app.cfg.LogLevel))

	defer func() {
		app.logs.RemoveHandler("ui")
		app.logs.AddHandler("terminal", newTerminalHandler(app.stderr, app.cfg.LogLevel))
	}()

	if err := uiHandler.Launch(); err != nil {
		return fmt.Errorf("(app-ui) %w", err)
	}

	return nil
}
