// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"io"
)

type flags struct {
	imagePath string
	preview   bool
	debug     bool
	bigEndian bool
	version   bool

	op   string
	args []string
}

func parseArgs(args []string, output io.Writer) (*flags, error) {
	f := &flags{}

	fs := flag.NewFlagSet("rimfs [flags...] <op> [args...]", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(
		&f.imagePath,
		"image",
		"",
		"path of the packed runtime image file",
	)

	fs.BoolVar(
		&f.preview,
		"preview",
		f.preview,
		"enable the preview resource layer",
	)

	fs.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug logging",
	)

	fs.BoolVar(
		&f.bigEndian,
		"big-endian",
		f.bigEndian,
		"write created images in big endian byte order",
	)

	fs.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	if err := fs.Parse(args); err != nil {
		//nolint:wrapcheck
		return nil, err
	}

	if f.version {
		return f, nil
	}

	if f.imagePath == "" {
		return nil, ErrNoImage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return nil, ErrNoOp
	}

	f.op = rest[0]
	f.args = rest[1:]

	return f, nil
}
