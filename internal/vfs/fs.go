// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vfs

import (
	"io/fs"
	"path"
	"strings"

	"github.com/aibor/rimfs/internal/image"
)

// ReadLinkFS is a [fs.FS] with additional methods for reading the target
// of a symbolic link.
//
// Replace with [fs.ReadLinkFS] once available (planned for 1.25). See
// https://github.com/golang/go/issues/49580
type ReadLinkFS interface {
	fs.FS

	ReadLink(name string) (string, error)
	Lstat(name string) (fs.FileInfo, error)
}

var (
	_ fs.FS      = (*FS)(nil)
	_ ReadLinkFS = (*FS)(nil)
)

// FS is a read only [fs.FS] over a virtual node engine.
type FS struct {
	img *image.Image
}

// New creates a new FS reading from the given engine.
func New(img *image.Image) *FS {
	return &FS{
		img: img,
	}
}

// Open opens the named file. Symbolic links are followed.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) Open(name string) (fs.File, error) {
	node, err := fsys.find(name)
	if err == nil {
		node = node.ResolveLink(true)
		if node == nil {
			err = ErrFileNotExist
		}
	}

	if err != nil {
		return nil, &PathError{
			Op:   "open",
			Path: name,
			Err:  err,
		}
	}

	return openNode(name, node)
}

// ReadLink returns the target of the symbolic link with the given name.
//
// It returns a [PathError] in case of errors. It returns ErrFileInvalid
// if the file is not a symbolic link.
func (fsys *FS) ReadLink(name string) (string, error) {
	target, err := fsys.readLink(name)
	if err != nil {
		return "", &PathError{
			Op:   "readlink",
			Path: name,
			Err:  err,
		}
	}

	return target, nil
}

// Lstat returns information about the file with the given name. It does
// not follow symbolic links and returns symbolic links directly.
//
// It returns a [PathError] in case of errors.
func (fsys *FS) Lstat(name string) (fs.FileInfo, error) {
	node, err := fsys.find(name)
	if err != nil {
		return nil, &PathError{
			Op:   "lstat",
			Path: name,
			Err:  err,
		}
	}

	return &fileInfo{
		name: path.Base(name),
		node: node,
	}, nil
}

func (fsys *FS) find(name string) (*image.Node, error) {
	if !fs.ValidPath(name) {
		return nil, ErrFileInvalid
	}

	absPath := ""
	if name != "." {
		absPath = "/" + name
	}

	node, err := fsys.img.Find(absPath)
	if err != nil {
		return nil, ErrFileNotExist
	}

	return node, nil
}

func (fsys *FS) readLink(name string) (string, error) {
	node, err := fsys.find(name)
	if err != nil {
		return "", err
	}

	if !node.IsLink() {
		return "", ErrFileInvalid
	}

	target := node.ResolveLink(false)
	if target == nil {
		return "", ErrFileNotExist
	}

	return strings.TrimPrefix(target.Path(), "/"), nil
}
