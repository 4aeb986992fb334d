package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// dotEnvFile is loaded from the working directory before anything else.
const dotEnvFile = ".env"

// ErrUnknownCommand indicates a command name that is not recognized.
var ErrUnknownCommand = errors.New("unknown command")

func main() {
	setMaxProcs(hasVerboseFlag(os.Args[1:]), os.Stderr)
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// setMaxProcs configures GOMAXPROCS from the container CPU quota. Its
// messages are only shown in verbose mode.
func setMaxProcs(verbose bool, w io.Writer) {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerboseFlag reports whether args request verbose output, before any
// command parses them.
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if err := loadDotEnv(dotEnvFile); err != nil {
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
	}
	warnUnknownEnvVars(env.Stderr, env.Environ())

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, cmdArgs := args[1], args[2:]
	var err error
	switch cmd {
	case "convert":
		err = runConvert(ctx, cmdArgs, env)
	case "preview":
		err = runPreview(ctx, cmdArgs, env)
	case "report":
		err = runReport(cmdArgs, env)
	case "config":
		err = runConfig(cmdArgs, env)
	case "doctor":
		err = runDoctor(cmdArgs, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "wp2mdx %s\n", Version)
	case "help", "-h", "--help":
		runHelp(cmdArgs, env)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
	}

	if err != nil {
		fmt.Fprintln(env.Stderr, err)
	}
	return exitCodeFor(err)
}
