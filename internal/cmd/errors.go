// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import "errors"

var (
	// ErrNoImage is returned if no image file path was given.
	ErrNoImage = errors.New("no image file given, use -image")

	// ErrNoOp is returned if no operation was given.
	ErrNoOp = errors.New("no operation given")

	// ErrUnknownOp is returned for unknown operations.
	ErrUnknownOp = errors.New("unknown operation")

	// ErrInvalidArgs is returned if an operation got unusable arguments.
	ErrInvalidArgs = errors.New("invalid arguments")

	// ErrReadBuildInfo is returned if the build info is not available.
	ErrReadBuildInfo = errors.New("build info not available")
)
