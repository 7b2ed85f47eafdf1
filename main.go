// Command ch8 executes CHIP-8 programs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/host"
	"github.com/nf/ch8/statsview"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type options struct {
	romFile string

	cli   bool
	debug bool
	watch bool

	rate   int
	quirks chip8.Quirks
	dump   int
	seed   uint64
	sym    string
	scale  int

	verbose bool
	quiet   bool

	cpuProfile string
	statsview  string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ch8: %v\n", err)
		os.Exit(2)
	}

	var (
		dbg     *debugger
		restore = func() {}
	)
	if opts.debug {
		dbg = newDebugger(opts.scale)
		if restore, err = captureOutput(dbg.logView); err != nil {
			fmt.Fprintf(os.Stderr, "ch8: %v\n", err)
			os.Exit(1)
		}
	}
	logger := newLogger(opts.verbose, opts.quiet)
	logger.Debug("ch8", log.String("version", buildinfo.Version(version, commit, date)))

	stopProfile := startCPUProfile(opts.cpuProfile, logger)
	if opts.statsview != "" {
		statsview.Launch(opts.statsview, logger)
	}

	err = run(app.Context(), logger, opts, dbg)

	stopProfile()
	restore()
	if err != nil && !errors.Is(err, context.Canceled) {
		// The logger may have been writing to the debugger.
		newLogger(false, false).Fatal(err.Error())
	}
}

// newLogger creates a logger that logs debug messages if debug is set and
// only errors if quiet is set.
func newLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func parseFlags(args []string) (options, error) {
	var (
		opts  options
		flags = flag.NewFlagSet("ch8", flag.ContinueOnError)

		quirks      = flags.String("quirks", "modern", "interpreter `behavior`: "+strings.Join(chip8.QuirkPresets(), ", "))
		versionFlag = flags.Bool("version", false, "print version and exit")
	)
	flags.BoolVar(&opts.cli, "cli", false, "draw in the terminal instead of a window")
	flags.BoolVar(&opts.debug, "debug", false, "enable debugger (starts paused)")
	flags.BoolVar(&opts.watch, "watch", false, "reload the program when its file changes")
	flags.IntVar(&opts.rate, "rate", chip8.DefaultRate, "instructions per `second`")
	flags.IntVar(&opts.dump, "dump", 0, "log the machine state after `n` instructions")
	flags.Uint64Var(&opts.seed, "seed", 0, "random number `seed` (0 picks one)")
	flags.StringVar(&opts.sym, "sym", "", "read debugger labels from `file`")
	flags.IntVar(&opts.scale, "scale", 10, "window and screenshot `scale`")
	flags.BoolVar(&opts.verbose, "v", false, "log debug messages")
	flags.BoolVar(&opts.quiet, "q", false, "log errors only")
	flags.StringVar(&opts.cpuProfile, "cpu_profile", "", "write CPU profile to `file`")
	flags.StringVar(&opts.statsview, "statsview", "", "serve runtime statistics on `addr` (e.g. "+statsview.DefaultAddr+")")

	flags.Usage = func() {
		out := flags.Output()
		fmt.Fprintf(out, "ch8 %s\n", buildinfo.Version(version, commit, date))
		fmt.Fprintf(out, "usage: ch8 [-cli] [-watch] [-quirks name] <program.ch8>\n")
		fmt.Fprintf(out, "       ch8 -debug [-sym file] <program.ch8>\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	if *versionFlag {
		fmt.Println(buildinfo.Version(version, commit, date))
		return opts, flag.ErrHelp
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return opts, errors.New("expected one program file")
	}
	opts.romFile = flags.Arg(0)

	q, err := chip8.QuirksByName(*quirks)
	if err != nil {
		return opts, err
	}
	opts.quirks = q
	switch {
	case opts.rate <= 0:
		return opts, fmt.Errorf("invalid rate %d", opts.rate)
	case opts.scale <= 0:
		return opts, fmt.Errorf("invalid scale %d", opts.scale)
	case opts.debug && opts.cli:
		return opts, errors.New("-debug uses the terminal and cannot be combined with -cli")
	case opts.sym != "" && !opts.debug:
		return opts, errors.New("-sym requires -debug")
	}
	return opts, nil
}

func run(ctx context.Context, logger *log.Logger, opts options, dbg *debugger) error {
	rom, err := os.ReadFile(opts.romFile)
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	keys := host.NewKeypad()
	runner := host.NewRunner(host.Config{
		Rate:   opts.rate,
		Quirks: opts.quirks,
		Dump:   opts.dump,
		Debug:  opts.debug,
		Seed:   opts.seed,
	}, keys, logger)

	var fe host.Frontend
	if opts.cli {
		fe = host.NewTerminal(keys, logger)
	} else {
		fe = host.NewGUI(keys, opts.scale, logger)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if dbg != nil {
		if opts.sym != "" {
			syms, err := readSymbols(opts.sym)
			if err != nil {
				return fmt.Errorf("reading labels: %w", err)
			}
			dbg.setSymbols(syms)
		}
		dbg.run = runner
		dbg.log = logger
		runner.SetStateFunc(dbg.StateFunc)
		go func() {
			if err := dbg.Run(); err != nil {
				logger.Error("Debugger failed", log.Err(err))
			}
			runner.Debug("exit", 0)
		}()
		defer dbg.Stop()
	}

	if opts.watch {
		go func() {
			if err := watchProgram(ctx, opts.romFile, runner.Reset, logger); err != nil {
				logger.Error("Watching program failed", log.Err(err))
			}
		}()
	}

	return runner.Run(ctx, rom, fe)
}

func startCPUProfile(file string, logger *log.Logger) (stop func()) {
	if file == "" {
		return func() {}
	}
	f, err := os.Create(file)
	if err != nil {
		logger.Fatal("Creating CPU profile failed", log.Err(err))
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		logger.Fatal("Starting CPU profile failed", log.Err(err))
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}
