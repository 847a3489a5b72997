package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/mpi-vid/hostmod"
	"github.com/wippyai/mpi-vid/idtable"
	"github.com/wippyai/mpi-vid/mpi"
)

func main() {
	var (
		script      = flag.String("script", "", "Command script to run (- for stdin)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		logLevel    = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
		logFile     = flag.String("log-file", "", "Write logs to file instead of stderr")
		wasmFile    = flag.String("wasm", "", "Guest module importing mpi_vid (optional)")
		funcName    = flag.String("func", "_start", "Guest function to call")
		funcArgs    = flag.String("args", "", "Guest arguments (comma-separated integers)")
		maxID       = flag.Uint64("max-id", 0, "Largest virtual id per category (0 = type limit)")
		commNull    = flag.Uint64("comm-null", 0, "Communicator null handle")
		groupNull   = flag.Uint64("group-null", 0, "Group null handle")
		typeNull    = flag.Uint64("type-null", 0, "Datatype null handle")
		opNull      = flag.Uint64("op-null", 0, "Operator null handle")
	)
	flag.Parse()

	stdinTTY := term.IsTerminal(int(os.Stdin.Fd()))
	if *interactive && !stdinTTY {
		fmt.Fprintln(os.Stderr, "Usage: vidctl -i requires a terminal")
		os.Exit(1)
	}

	log, err := newLogger(*logLevel, *logFile, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := mpi.Config{
		Logger:    log,
		CommNull:  mpi.Comm(*commNull),
		GroupNull: mpi.Group(*groupNull),
		TypeNull:  mpi.Datatype(*typeNull),
		OpNull:    mpi.Op(*opNull),
	}
	if *maxID != 0 {
		cfg.TableOpts = append(cfg.TableOpts, idtable.WithMaxID(*maxID))
	}
	handles := mpi.New(cfg)

	s := newSession(handles)
	defer s.Close()

	ctx := context.Background()

	if *wasmFile != "" {
		if err := runGuest(ctx, handles, log, *wasmFile, *funcName, *funcArgs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if err := runInteractive(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, s, *script, stdinTTY, *wasmFile != ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, s *session, script string, stdinTTY, ranGuest bool) error {
	switch {
	case script == "-":
		return s.RunScript(ctx, os.Stdin, os.Stdout)
	case script != "":
		f, err := os.Open(script)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		return s.RunScript(ctx, f, os.Stdout)
	case ranGuest:
		out, err := s.Exec(ctx, "show")
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	case stdinTTY:
		return repl(ctx, s, os.Stdin, os.Stdout)
	default:
		return s.RunScript(ctx, os.Stdin, os.Stdout)
	}
}

// repl reads commands until EOF or "quit". Failed commands are reported
// and do not end the session.
func repl(ctx context.Context, s *session, r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "vidctl: type help for commands, quit to exit")
	sc := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "> ")
		if !sc.Scan() {
			fmt.Fprintln(w)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		out, err := s.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Fprintln(w, out)
		}
	}
}

func newLogger(level, file string, interactive bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	// The TUI owns the screen; only log when a file is given.
	if interactive && file == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	if file != "" {
		cfg.OutputPaths = []string{file}
	}
	return cfg.Build()
}

func runGuest(ctx context.Context, handles *mpi.Handles, log *zap.Logger, wasmFile, funcName, argStr string) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var args []uint64
	if argStr != "" {
		for _, a := range strings.Split(argStr, ",") {
			v, err := strconv.ParseUint(strings.TrimSpace(a), 0, 64)
			if err != nil {
				return fmt.Errorf("guest argument %q: %w", a, err)
			}
			args = append(args, v)
		}
	}

	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := hostmod.New(handles, hostmod.WithLogger(log)).Instantiate(ctx, rt); err != nil {
		return err
	}

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	defer compiled.Close(ctx)

	// Start functions are not run automatically so _start can be called
	// explicitly like any other export.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName("guest").
		WithStartFunctions())
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return fmt.Errorf("guest does not export %q", funcName)
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Printf("%s -> %v\n", funcName, results)
	return nil
}
