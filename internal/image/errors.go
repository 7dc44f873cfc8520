// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"errors"
	"io/fs"
)

var (
	// ErrNotExist is returned if a node that is looked up does not exist.
	ErrNotExist = fs.ErrNotExist

	// ErrNotDirectory is returned if children are requested from a node
	// that is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile is returned if content is requested from a node that is
	// not a regular file.
	ErrNotFile = errors.New("not a regular file")
)

// PathError records an error and the operation and file path that caused it.
type PathError = fs.PathError
