package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"

	"github.com/desertwitch/rawos/internal/args"
	"github.com/desertwitch/rawos/internal/configuration"
	"github.com/desertwitch/rawos/internal/fsmeta"
	"github.com/desertwitch/rawos/internal/readdir"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
)

const timeLayout = "2006-01-02 15:04:05.000000000 -0700"

func lsFlags(flags *flag.FlagSet) {
	flags.Bool("l", false, "use a long listing format")
}

func cpFlags(flags *flag.FlagSet) {
	flags.Bool("verify", false, "copy through a temporary file and verify BLAKE3 checksums")
}

func statFlags(flags *flag.FlagSet) {
	flags.Bool("L", false, "follow symbolic links")
}

func mkdirFlags(flags *flag.FlagSet) {
	flags.String("m", "", "permission mode of new directories (octal)")
	flags.Bool("p", false, "create missing parents, existing directories are no error")
}

func lnFlags(flags *flag.FlagSet) {
	flags.Bool("s", false, "create a symbolic link instead of a hard link")
}

func boolFlag(flags *flag.FlagSet, name string) bool {
	getter, ok := flags.Lookup(name).Value.(flag.Getter)
	if !ok {
		return false
	}

	v, _ := getter.Get().(bool)

	return v
}

func (app *App) runLs(_ context.Context, flags *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	long := boolFlag(flags, "l")

	for i, dir := range paths {
		if len(paths) > 1 {
			if i > 0 {
				fmt.Fprintln(app.stdout)
			}
			fmt.Fprintf(app.stdout, "%s:\n", dir)
		}

		if err := app.listDir(dir, long); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) listDir(dir string, long bool) error {
	stream, err := app.fsHandler.ReadDir(dir)
	if err != nil {
		return err
	}
	defer stream.Close()

	var entries []*readdir.DirEntry
	for entry, err := range stream.All() {
		if err != nil {
			return err
		}
		if entry.Name() == "." || entry.Name() == ".." {
			continue
		}
		entries = append(entries, entry)
	}

	slices.SortFunc(entries, func(a, b *readdir.DirEntry) int {
		switch {
		case a.Name() < b.Name():
			return -1
		case a.Name() > b.Name():
			return 1
		default:
			return 0
		}
	})

	for _, entry := range entries {
		if !long {
			fmt.Fprintln(app.stdout, entry.Name())

			continue
		}

		attr, err := entry.Metadata()
		if err != nil {
			slog.Warn("Failed to read metadata of directory entry.",
				"path", entry.Path(),
				"err", err,
			)

			continue
		}

		name := entry.Name()
		if attr.FileType().IsSymlink() {
			if target, err := app.fsHandler.Readlink(entry.Path()); err == nil {
				name += " -> " + target
			}
		}

		mtime, _ := attr.Modified()

		fmt.Fprintf(app.stdout, "%s %3d %5d %5d %8s %s %s\n",
			attr.FileMode(),
			attr.Nlink(),
			attr.UID(),
			attr.GID(),
			humanize.IBytes(attr.Size()),
			mtime.Format("Jan _2 15:04"),
			name,
		)
	}

	return nil
}

func (app *App) runCat(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	for _, path := range paths {
		if err := app.catFile(path); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) catFile(path string) error {
	f, err := app.fsHandler.OpenRead(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(app.stdout, f); err != nil {
		return fmt.Errorf("(cat) failed to copy %s: %w", path, err)
	}

	return nil
}

func (app *App) runCp(ctx context.Context, flags *flag.FlagSet, paths []string) error {
	if len(paths) != 2 { //nolint:mnd
		return ErrUsage
	}

	from, to := paths[0], paths[1]

	if boolFlag(flags, "verify") || app.cfg.VerifyCopy {
		n, err := app.integrityOps.Transfer(ctx, from, to)
		if err != nil {
			return err
		}

		slog.Info("Copied and verified file.",
			"from", from,
			"to", to,
			"size", humanize.IBytes(uint64(n)), //nolint:gosec
		)

		return nil
	}

	n, err := app.fsHandler.Copy(from, to)
	if err != nil {
		return err
	}

	slog.Info("Copied file.",
		"from", from,
		"to", to,
		"size", humanize.IBytes(uint64(n)), //nolint:gosec
	)

	return nil
}

func (app *App) runStat(_ context.Context, flags *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	follow := boolFlag(flags, "L")

	for _, path := range paths {
		var attr fsmeta.FileAttr
		var err error

		if follow {
			attr, err = app.fsHandler.Stat(path)
		} else {
			attr, err = app.fsHandler.Lstat(path)
		}
		if err != nil {
			return err
		}

		app.printStat(path, attr)
	}

	return nil
}

func (app *App) printStat(path string, attr fsmeta.FileAttr) {
	formatTime := func(t interface{ Format(string) string }, err error) string {
		if err != nil {
			return "-"
		}

		return t.Format(timeLayout)
	}

	mtime, mErr := attr.Modified()
	atime, aErr := attr.Accessed()
	btime, bErr := attr.Created()

	fmt.Fprintf(app.stdout, "  File: %s\n", path)
	fmt.Fprintf(app.stdout, "  Size: %d (%s)\tType: %s\n", attr.Size(), humanize.IBytes(attr.Size()), attr.FileType())
	fmt.Fprintf(app.stdout, " Inode: %d\tLinks: %d\n", attr.Ino(), attr.Nlink())
	fmt.Fprintf(app.stdout, "Access: (%04o/%s)\tUid: %d\tGid: %d\n", attr.Perm().Mode(), attr.FileMode(), attr.UID(), attr.GID())
	fmt.Fprintf(app.stdout, "Access: %s\n", formatTime(atime, aErr))
	fmt.Fprintf(app.stdout, "Modify: %s\n", formatTime(mtime, mErr))
	fmt.Fprintf(app.stdout, " Birth: %s\n", formatTime(btime, bErr))
}

func (app *App) runReadlink(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	for _, path := range paths {
		target, err := app.fsHandler.Readlink(path)
		if err != nil {
			return err
		}

		fmt.Fprintln(app.stdout, target)
	}

	return nil
}

func (app *App) runMkdir(_ context.Context, flags *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	mode := app.cfg.DirMode
	if m := flags.Lookup("m").Value.String(); m != "" {
		parsed, err := configuration.ParseMode(m)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		mode = parsed
	}

	for _, path := range paths {
		var err error
		if boolFlag(flags, "p") {
			err = app.aferoFs.MkdirAll(path, fs.FileMode(mode&0o777))
		} else {
			err = app.fsHandler.NewDirBuilder().Mode(mode).Mkdir(path)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (app *App) runRmdir(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	for _, path := range paths {
		if err := app.fsHandler.Rmdir(path); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) runRm(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	for _, path := range paths {
		if err := app.fsHandler.Unlink(path); err != nil {
			return err
		}
	}

	return nil
}

func (app *App) runMv(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) != 2 { //nolint:mnd
		return ErrUsage
	}

	return app.fsHandler.Rename(paths[0], paths[1])
}

func (app *App) runLn(_ context.Context, flags *flag.FlagSet, paths []string) error {
	if len(paths) != 2 { //nolint:mnd
		return ErrUsage
	}

	if boolFlag(flags, "s") {
		return app.fsHandler.Symlink(paths[0], paths[1])
	}

	return app.fsHandler.Link(paths[0], paths[1])
}

func (app *App) runChmod(_ context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) < 2 { //nolint:mnd
		return ErrUsage
	}

	mode, err := configuration.ParseMode(paths[0])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	for _, path := range paths[1:] {
		if err := app.fsHandler.SetPermissions(path, fsmeta.FromMode(mode)); err != nil {
			return err
		}
	}

	return nil
}

type sumResult struct {
	sum string
	err error
}

// runSum checksums files concurrently, bounded by the number of CPUs, and
// prints the results in argument order.
func (app *App) runSum(ctx context.Context, _ *flag.FlagSet, paths []string) error {
	if len(paths) == 0 {
		return ErrUsage
	}

	results := make([]sumResult, len(paths))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, runtime.NumCPU())

	for i, path := range paths {
		select {
		case <-ctx.Done():
			wg.Wait()

			return ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-semaphore }()

			sum, err := app.integrityOps.Checksum(ctx, path)
			results[i] = sumResult{sum: sum, err: err}
		}()
	}

	wg.Wait()

	var errs []error
	for i, res := range results {
		if res.err != nil {
			errs = append(errs, res.err)

			continue
		}

		fmt.Fprintf(app.stdout, "%s  %s\n", res.sum, paths[i])
	}

	return errors.Join(errs...)
}

func (app *App) runTree(ctx context.Context, _ *flag.FlagSet, paths []string) error {
	root := "."
	switch len(paths) {
	case 0:
	case 1:
		root = paths[0]
	default:
		return ErrUsage
	}

	var dirs, files int

	err := afero.Walk(app.aferoFs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if info.IsDir() {
			dirs++
			fmt.Fprintln(app.stdout, path+"/")
		} else {
			files++
			fmt.Fprintln(app.stdout, path)
		}

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "\n%d directories, %d files\n", dirs, files)

	return nil
}

func (app *App) runArgs(_ context.Context, _ *flag.FlagSet, _ []string) error {
	all := args.All()

	for i := 0; ; i++ {
		arg, ok := all.Next()
		if !ok {
			break
		}

		fmt.Fprintf(app.stdout, "%d: %q\n", i, arg)
	}

	return nil
}

func (app *App) runBrowse(ctx context.Context, _ *flag.FlagSet, paths []string) error {
	if !app.cfg.UI {
		return ErrBrowserDisabled
	}

	root := "."
	switch len(paths) {
	case 0:
	case 1:
		root = paths[0]
	default:
		return ErrUsage
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return app.browserLaunch(ctx, cancel, root)
}
