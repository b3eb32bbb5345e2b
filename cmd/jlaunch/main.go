package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/provide-io/jlaunch/pkg/launcher"
	"github.com/provide-io/jlaunch/pkg/logging"
)

func main() {
	// Set up panic recovery to return specific exit code
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(launcher.ExitPanic)
		}
	}()

	os.Exit(run())
}

func run() int {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		return launcher.ExitIOError
	}

	logOutput, closeLog := logging.LogOutput(os.Stderr)
	defer closeLog()
	logger := logging.NewLogger("jlaunch", logging.GetLogLevel(), logOutput)
	logger.Debug("☕ jlaunch starting", "exe", exePath, "args", len(os.Args)-1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := launcher.Launch(ctx, launcher.Options{
		ExePath: exePath,
		Args:    os.Args[1:],
		Output:  logging.NewOutput(os.Stdout, os.Stderr, logger),
		Stdin:   os.Stdin,
	})
	if err != nil {
		logger.Debug("Launcher exiting", "exit_code", code, "error", err)
	}
	return code
}
