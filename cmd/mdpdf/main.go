package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, "serve" runs.
func runMain(ctx context.Context, args []string, env *Environment) int {
	cmd, rest := "serve", []string(nil)
	if len(args) > 1 {
		rest = args[2:]
		if isCommand(args[1]) {
			cmd = args[1]
		} else {
			rest = args[1:]
		}
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, rest, env)
	case "convert":
		err = runConvert(ctx, rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		err = runConfigCmd(rest, env)
	case "version", "--version", "-v":
		fmt.Fprintf(env.Stdout, "mdpdf %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(rest, env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// isCommand reports whether arg names a command rather than a flag.
func isCommand(arg string) bool {
	return arg != "" && (arg[0] != '-' || arg == "--version" || arg == "-v" || arg == "--help" || arg == "-h")
}
