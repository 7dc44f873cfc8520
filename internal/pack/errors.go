// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned if a looked up resource does not exist.
	ErrNotExist = fs.ErrNotExist

	// ErrFormat is returned if an image file is malformed.
	ErrFormat = errors.New("invalid image format")

	// ErrClosed is returned for resource reads on a closed reader.
	ErrClosed = errors.New("image reader already closed")

	// ErrInvalidPath is returned if a path added to a writer is malformed.
	ErrInvalidPath = errors.New("invalid resource path")

	// ErrExists is returned if an added resource conflicts with an
	// existing one.
	ErrExists = errors.New("resource already exists")
)
