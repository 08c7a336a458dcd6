// Command xmd packs a directory of numbered asset files into an XMD archive,
// or unpacks an XMD archive into a directory of named files.
//
//	xmd [flags] <path>
//
// A directory argument produces "<path>.xmd". A file argument produces a
// new sibling directory "<stem>_<ext>".
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/spf13/pflag"

	"github.com/logicossoftware/go-xmd"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	envelope xmd.Envelope
	level    int
	strict   bool
	verbose  bool
}

func run(args []string) error {
	var envelopeName string
	var opts options
	var showVersion bool

	flagSet := pflag.NewFlagSet("xmd", pflag.ContinueOnError)
	flagSet.StringVar(&envelopeName, "envelope", "gzip", "compression applied when packing: none, gzip, zstd or lz4")
	flagSet.IntVar(&opts.level, "level", -1, "gzip compression level (-1 for default)")
	flagSet.BoolVar(&opts.strict, "strict", false, "reject archives whose reserved header bytes are unexpected")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log every entry")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xmd [flags] <path>\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("xmd %s\n", version())
		return nil
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one path argument, got %d", flagSet.NArg())
	}
	env, err := xmd.ParseEnvelope(envelopeName)
	if err != nil {
		return err
	}
	opts.envelope = env

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := filepath.Clean(flagSet.Arg(0))
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return pack(path, opts, logger)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is neither a directory nor a regular file", path)
	}
	return unpack(path, opts, logger)
}

func pack(dir string, opts options, logger *slog.Logger) error {
	a, err := xmd.ReadDir(dir, xmd.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	out := dir + ".xmd"
	err = xmd.WriteFile(out, a,
		xmd.WithLogger(logger),
		xmd.WithEncodeOptions(xmd.WithEnvelope(opts.envelope), xmd.WithGzipLevel(opts.level)),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Info("packed archive", "path", out, "entries", a.Len(), "envelope", opts.envelope)
	return nil
}

func unpack(path string, opts options, logger *slog.Logger) error {
	a, err := xmd.ReadFile(path,
		xmd.WithLogger(logger),
		xmd.WithDecodeOptions(xmd.WithStrictReserved(opts.strict)),
	)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out := extractDir(path)
	if err := xmd.Extract(a, out, xmd.WithLogger(logger)); err != nil {
		return fmt.Errorf("extract %s: %w", out, err)
	}
	logger.Info("unpacked archive", "path", out, "entries", a.Len())
	return nil
}

// extractDir names the output directory for an archive: "<stem>_<ext>",
// or "<path>_xmd" when the file has no extension.
func extractDir(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return path + "_xmd"
	}
	return strings.TrimSuffix(path, ext) + "_" + ext[1:]
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
