// Package main provides the dwf CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/softmentor/devflow"
)

func main() {
	setupLogging(os.Getenv("DEVFLOW_LOG"))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dwf:", err)

		var drift *devflow.DriftError
		if errors.As(err, &drift) && drift.Diff != "" {
			fmt.Fprint(os.Stderr, drift.Diff)
		}
		os.Exit(devflow.ExitCode(err))
	}
}

// setupLogging configures the default slog logger from a RUST_LOG-style
// spec: a bare level or comma-separated module=level entries, where the
// devflow module entry wins. trace maps to debug with a trace attribute.
func setupLogging(spec string) {
	level := slog.LevelWarn
	trace := false
	devflowSet := false

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		module, value, scoped := strings.Cut(entry, "=")
		if scoped && module != "devflow" {
			continue
		}
		if scoped {
			devflowSet = true
			trace = false
		} else {
			if devflowSet {
				continue
			}
			value = module
		}
		switch strings.ToLower(value) {
		case "error":
			level = slog.LevelError
		case "warn":
			level = slog.LevelWarn
		case "info":
			level = slog.LevelInfo
		case "debug":
			level = slog.LevelDebug
		case "trace":
			level = slog.LevelDebug
			trace = true
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if trace {
		logger = logger.With("trace", true)
	}
	slog.SetDefault(logger)
}
