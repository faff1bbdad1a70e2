package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	if hasVerboseFlag(os.Args) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches args[1] and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, cmdArgs := args[1], args[2:]

	var err error
	switch cmd {
	case "render":
		err = runRender(ctx, cmdArgs, env)
	case "problem":
		err = runProblem(ctx, cmdArgs, env)
	case "batch":
		err = runBatch(ctx, cmdArgs, env)
	case "comment-graphics":
		err = runCommentGraphics(ctx, cmdArgs, env)
	case "doctor":
		return runDoctorCmd(ctx, cmdArgs, env)
	case "css":
		err = runCSS(cmdArgs, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "tex2html %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(cmdArgs, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	return reportError(err, env)
}

// reportError prints err to stderr and maps it to an exit code.
func reportError(err error, env *Environment) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	return exitCodeFor(err)
}

// isCommand reports whether name is a tex2html command.
func isCommand(name string) bool {
	switch name {
	case "render", "problem", "batch", "comment-graphics", "doctor", "css", "version", "help":
		return true
	}
	return false
}

// hasVerboseFlag scans args before flag parsing so GOMAXPROCS logging can
// be enabled ahead of dispatch.
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
