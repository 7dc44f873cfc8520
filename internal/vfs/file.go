// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vfs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/vpath"
)

const (
	dirMode  = fs.ModeDir | 0o555
	fileMode = fs.FileMode(0o444)
	linkMode = fs.ModeSymlink | 0o777
)

var (
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = (*dirEntry)(nil)
)

// fileInfo describes a node. The size of a regular file is only known
// after its content was loaded and is zero otherwise.
type fileInfo struct {
	name string
	node *image.Node
	size int64
}

func (i *fileInfo) Name() string { return i.name }
func (i *fileInfo) Size() int64  { return i.size }
func (i *fileInfo) IsDir() bool  { return i.node.IsDir() }
func (i *fileInfo) Sys() any     { return i.node }

func (i *fileInfo) Mode() fs.FileMode {
	switch i.node.Kind() {
	case image.KindDirectory:
		return dirMode
	case image.KindLink:
		return linkMode
	default:
		return fileMode
	}
}

func (*fileInfo) ModTime() time.Time { return time.Time{} }
func (i *fileInfo) String() string   { return fs.FormatFileInfo(i) }

// dirEntry is a directory listing entry for a child node.
type dirEntry struct {
	node *image.Node
}

func (e *dirEntry) Name() string {
	return vpath.Base(e.node.Path())
}

func (e *dirEntry) IsDir() bool {
	return e.node.IsDir()
}

func (e *dirEntry) Type() fs.FileMode {
	info := fileInfo{node: e.node}

	return info.Mode().Type()
}

func (e *dirEntry) Info() (fs.FileInfo, error) {
	info := &fileInfo{
		name: e.Name(),
		node: e.node,
	}

	// Content is the only way to learn a regular file's size.
	if !e.node.IsDir() && !e.node.IsLink() {
		content, err := e.node.Content()
		if err != nil {
			return nil, err
		}

		info.size = int64(len(content))
	}

	return info, nil
}

func (e *dirEntry) String() string { return fs.FormatDirEntry(e) }

var (
	_ fs.File        = (*openFile)(nil)
	_ fs.ReadDirFile = (*openFile)(nil)
)

// openFile is an open node handle. Regular files read from the loaded
// content, directories serve their child entries.
type openFile struct {
	info    fileInfo
	reader  *bytes.Reader
	entries []fs.DirEntry
	offset  int
}

// openNode opens the given resolved node. Regular file content is loaded
// immediately so content errors surface at open time.
func openNode(name string, node *image.Node) (fs.File, error) {
	file := &openFile{
		info: fileInfo{
			name: path.Base(name),
			node: node,
		},
	}

	if node.IsDir() {
		children, err := node.Children()
		if err != nil {
			return nil, &PathError{
				Op:   "open",
				Path: name,
				Err:  err,
			}
		}

		file.entries = make([]fs.DirEntry, len(children))
		for idx, child := range children {
			file.entries[idx] = &dirEntry{node: child}
		}

		return file, nil
	}

	content, err := node.Content()
	if err != nil {
		return nil, &PathError{
			Op:   "open",
			Path: name,
			Err:  err,
		}
	}

	file.info.size = int64(len(content))
	file.reader = bytes.NewReader(content)

	return file, nil
}

// Stat implements [fs.File].
func (f *openFile) Stat() (fs.FileInfo, error) {
	return &f.info, nil
}

// Read implements [fs.File].
func (f *openFile) Read(b []byte) (int, error) {
	if f.reader == nil {
		return 0, ErrFileInvalid
	}

	return f.reader.Read(b) //nolint:wrapcheck
}

// Close implements [fs.File].
func (*openFile) Close() error {
	return nil
}

// ReadDir implements [fs.ReadDirFile].
func (f *openFile) ReadDir(count int) ([]fs.DirEntry, error) {
	if !f.info.IsDir() {
		return nil, ErrFileNotDir
	}

	start := f.offset
	end := len(f.entries)
	available := end - start

	if available == 0 && count > 0 {
		return nil, io.EOF
	}

	if count > 0 && available > count {
		end = start + count
	}

	f.offset = end

	return f.entries[start:end], nil
}
