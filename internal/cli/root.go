// Package cli implements the schevo command line tool: a build-time gate
// that loads schema definition files and fails when a new version breaks an
// old one.
package cli

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/schevo/schevo/internal/core/compat"
	"github.com/schevo/schevo/internal/core/observability/log"
	"github.com/schevo/schevo/internal/core/schema"
)

// Execute runs the CLI and returns an exit code: 0 compatible/ok, 1 findings,
// 2 usage or load errors.
func Execute(argv []string) int {
	globalFS := flag.NewFlagSet("schevo", flag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	verbose := globalFS.Bool("verbose", false, "enable debug logging")

	if err := globalFS.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	level := log.LevelError
	if *verbose {
		level = log.LevelDebug
	}
	logger := log.New(level)
	defer func() { _ = logger.Sync() }()

	args := globalFS.Args()
	if len(args) == 0 {
		printRootHelp(os.Stdout)
		return 0
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		printRootHelp(os.Stdout)
		return 0
	case "check":
		return runCheck(logger, rest)
	case "fingerprint":
		return runFingerprint(logger, rest)
	case "validate":
		return runValidate(logger, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		printRootHelp(os.Stderr)
		return 2
	}
}

func printRootHelp(w *os.File) {
	fmt.Fprint(w, `schevo - schema evolution gate

Usage:
  schevo [-verbose] <command> [flags] [args]

Commands:
  check        compare two schema definition files; exit 1 on incompatibilities
  fingerprint  print the version and structural fingerprint of a schema file
  validate     parse schema files and report definition errors
  help         show this help
`)
}

func runCheck(logger *log.Logger, args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	mode := fs.String("mode", "substitute", "compatibility direction: substitute or migrate")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: schevo check [-mode substitute|migrate] <older> <newer>")
		return 2
	}

	older, err := schema.LoadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	newer, err := schema.LoadFile(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger.Debug("schemas loaded",
		zap.Int64("older", older.Version()),
		zap.Int64("newer", newer.Version()),
		zap.String("mode", *mode),
	)

	var findings []compat.Incompatibility
	switch *mode {
	case "substitute":
		findings = compat.Substitutable(older, newer)
	case "migrate":
		findings = compat.Migratable(older, newer)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		return 2
	}

	if len(findings) == 0 {
		fmt.Printf("%s v%d -> v%d: compatible (%s)\n",
			older.Name(), older.Version(), newer.Version(), *mode)
		return 0
	}
	for _, inc := range findings {
		fmt.Printf("%s\n", inc)
	}
	return 1
}

func runFingerprint(logger *log.Logger, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: schevo fingerprint <file>")
		return 2
	}
	s, err := schema.LoadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	logger.Debug("schema loaded", zap.String("name", s.Name()))
	fmt.Printf("%s v%d %016x\n", s.Name(), s.Version(), s.Fingerprint())
	return 0
}

func runValidate(logger *log.Logger, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: schevo validate <file>...")
		return 2
	}
	code := 0
	for _, path := range args {
		s, err := schema.LoadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			code = 1
			continue
		}
		logger.Debug("schema valid", zap.String("path", path))
		fmt.Printf("%s: %s v%d, %d fields\n", path, s.Name(), s.Version(), s.Len())
	}
	return code
}
