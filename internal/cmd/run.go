// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/pack"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	setupLogging(cfg.Stderr, false)

	flags, err := parseArgs(args, cfg.Stderr)
	if err != nil {
		// [flag.ErrHelp] is returned when help is requested. So exit
		// without error in this case.
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		slog.Error(err.Error())

		return 1
	}

	setupLogging(cfg.Stderr, flags.debug)

	if flags.version {
		buildInfo, err := getBuildInfo()
		if err != nil {
			slog.Error(err.Error())
			return 1
		}

		fmt.Fprintf(cfg.Stdout, "Version: %s\n", buildInfo.Main.Version)

		return 0
	}

	err = run(ctx, flags, cfg)
	if err != nil {
		slog.Error(err.Error())

		return 2
	}

	return 0
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	if flags.op == "create" {
		return runCreate(ctx, flags)
	}

	provider, err := pack.Open(flags.imagePath)
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer closeProvider(provider)

	img := image.New(provider, flags.preview)

	slog.Debug("Opened image",
		slog.String("path", flags.imagePath),
		slog.Bool("preview", flags.preview))

	switch flags.op {
	case "list":
		return runList(img, flags.args, cfg.Stdout)
	case "cat":
		return runCat(img, flags.args, cfg.Stdout)
	case "extract":
		return runExtract(img, flags.args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOp, flags.op)
	}
}

func closeProvider(provider *pack.Provider) {
	err := provider.Close()
	if err != nil {
		slog.Error("Failed to close image",
			slog.Any("error", err))
	}
}

func getBuildInfo() (*debug.BuildInfo, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrReadBuildInfo
	}

	return buildInfo, nil
}
