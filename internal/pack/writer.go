// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/aibor/rimfs/internal/vpath"
)

// Writer builds a packed runtime image from module resources. Resources
// are added with [Writer.Add]; the pseudo-directory trees for the
// "/modules" and "/packages" namespaces are synthesized when the image is
// written.
type Writer struct {
	order binary.ByteOrder
	files map[string][]byte
}

// NewWriter creates a Writer that emits the image in the given byte order.
func NewWriter(order binary.ByteOrder) *Writer {
	return &Writer{
		order: order,
		files: make(map[string][]byte),
	}
}

// Add adds a file resource for the given module. The path is relative to
// the module root, e.g. "java/lang/Integer.class". Parent directories are
// implied. Preview resources are added below "META-INF/preview/".
func (w *Writer) Add(module, path string, content []byte) error {
	if !vpath.IsValidRelative(module) || strings.ContainsRune(module, '/') {
		return fmt.Errorf("%w: module %q", ErrInvalidPath, module)
	}

	// The pseudo-module names are reserved for the namespace trees.
	if module == "modules" || module == "packages" {
		return fmt.Errorf("%w: reserved module %q", ErrInvalidPath, module)
	}

	if !vpath.IsValidRelative(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	key := module + "/" + path
	if _, exists := w.files[key]; exists {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}

	w.files[key] = content

	return nil
}

// entry is a single location under construction.
type entry struct {
	module  string
	parent  string
	base    string
	ext     string
	content []byte

	// isDir marks pseudo-directories, whose content is the encoded child
	// offset array.
	isDir    bool
	children []string

	keyOff     uint32
	contentOff uint32
	contentLen uint32
}

// WriteTo emits the image. It implements [io.WriterTo].
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	entries, err := w.buildEntries()
	if err != nil {
		return 0, err
	}

	keys := slices.Sorted(maps.Keys(entries))

	locOff := make(map[string]uint32, len(keys))
	for idx, key := range keys {
		locOff[key] = uint32(idx * locationSize)
	}

	strTab, stringOffsets := internStrings(entries, keys)
	content := w.buildContent(entries, keys, locOff)

	header := make([]byte, headerSize)
	w.order.PutUint32(header[0:], imageMagic)
	w.order.PutUint32(header[4:], imageVersion)
	w.order.PutUint32(header[8:], uint32(len(keys)))
	w.order.PutUint32(header[12:], uint32(len(strTab)))

	index := make([]byte, len(keys)*indexEntrySize)
	locations := make([]byte, len(keys)*locationSize)

	for idx, key := range keys {
		e := entries[key]

		w.order.PutUint32(index[idx*indexEntrySize:], e.keyOff)
		w.order.PutUint32(index[idx*indexEntrySize+4:], locOff[key])

		record := locations[idx*locationSize:]
		w.order.PutUint32(record[0:], stringOffsets[e.module])
		w.order.PutUint32(record[4:], stringOffsets[e.parent])
		w.order.PutUint32(record[8:], stringOffsets[e.base])
		w.order.PutUint32(record[12:], stringOffsets[e.ext])
		w.order.PutUint32(record[16:], e.contentOff)
		w.order.PutUint32(record[20:], e.contentLen)
	}

	var written int64

	for _, section := range [][]byte{header, strTab, index, locations, content} {
		n, err := out.Write(section)

		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write image: %w", err)
		}
	}

	return written, nil
}

// buildEntries creates the location entries for all file resources and
// the synthesized pseudo-directory trees.
func (w *Writer) buildEntries() (map[string]*entry, error) {
	dirs := map[string]bool{"": true}

	for path := range w.files {
		for dir := parentDir(path); dir != ""; dir = parentDir(dir) {
			dirs[dir] = true
		}
	}

	for path := range w.files {
		if dirs[path] {
			return nil, fmt.Errorf("%w: %s is a directory", ErrExists, path)
		}
	}

	entries := make(map[string]*entry)

	for path, content := range w.files {
		entries["/"+path] = fileEntry(path, content)
	}

	for dir := range dirs {
		entries[modulesKey(dir)] = &entry{
			module: "modules",
			base:   dir,
			isDir:  true,
		}
	}

	for dir := range dirs {
		if dir == "" {
			continue
		}

		parent := entries[modulesKey(parentDir(dir))]
		parent.children = append(parent.children, modulesKey(dir))
	}

	for path := range w.files {
		parent := entries[modulesKey(parentDir(path))]
		parent.children = append(parent.children, "/"+path)
	}

	w.buildPackageEntries(entries, dirs)

	return entries, nil
}

// buildPackageEntries synthesizes the "/packages" tree from the base
// layer directories. The reserved META-INF subtree never contributes
// package names.
func (w *Writer) buildPackageEntries(entries map[string]*entry, dirs map[string]bool) {
	root := &entry{module: "packages", isDir: true}
	entries["/packages"] = root

	pkgModules := make(map[string]map[string]bool)

	for dir := range dirs {
		module, rest, found := strings.Cut(dir, "/")
		if !found || rest == "META-INF" || strings.HasPrefix(rest, "META-INF/") {
			continue
		}

		pkg := vpath.PathToPackage(rest)
		if pkgModules[pkg] == nil {
			pkgModules[pkg] = make(map[string]bool)
		}

		pkgModules[pkg][module] = true
	}

	for pkg, modules := range pkgModules {
		key := "/packages/" + pkg
		pkgEntry := &entry{
			module: "packages",
			base:   pkg,
			isDir:  true,
		}
		entries[key] = pkgEntry
		root.children = append(root.children, key)

		for module := range modules {
			linkKey := key + "/" + module
			entries[linkKey] = &entry{
				module: "packages",
				base:   pkg + "/" + module,
			}
			pkgEntry.children = append(pkgEntry.children, linkKey)
		}
	}
}

// fileEntry splits a resource path into its location fields.
func fileEntry(path string, content []byte) *entry {
	module, rest, _ := strings.Cut(path, "/")

	parent := ""

	name := rest
	if idx := strings.LastIndexByte(rest, '/'); idx >= 0 {
		parent, name = rest[:idx], rest[idx+1:]
	}

	base, ext := name, ""
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		base, ext = name[:idx], name[idx+1:]
	}

	return &entry{
		module:  module,
		parent:  parent,
		base:    base,
		ext:     ext,
		content: content,
	}
}

func modulesKey(dir string) string {
	if dir == "" {
		return "/modules"
	}

	return "/modules/" + dir
}

func parentDir(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}

	return ""
}

// internStrings builds the string table. Offset zero always holds the
// empty string, so a zero offset marks absent fields like extensions.
func internStrings(
	entries map[string]*entry,
	keys []string,
) ([]byte, map[string]uint32) {
	strTab := []byte{0}
	offsets := map[string]uint32{"": 0}

	intern := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}

		off := uint32(len(strTab))
		strTab = append(strTab, s...)
		strTab = append(strTab, 0)
		offsets[s] = off

		return off
	}

	for _, key := range keys {
		e := entries[key]

		e.keyOff = intern(key)
		intern(e.module)
		intern(e.parent)
		intern(e.base)
		intern(e.ext)
	}

	return strTab, offsets
}

// buildContent lays out the content section: resource bytes for files,
// encoded child offset arrays for pseudo-directories.
func (w *Writer) buildContent(
	entries map[string]*entry,
	keys []string,
	locOff map[string]uint32,
) []byte {
	var content []byte

	for _, key := range keys {
		e := entries[key]

		blob := e.content

		if e.isDir {
			slices.Sort(e.children)

			blob = make([]byte, 4*len(e.children))
			for idx, child := range e.children {
				w.order.PutUint32(blob[idx*4:], locOff[child])
			}
		}

		if len(blob) == 0 {
			continue
		}

		e.contentOff = uint32(len(content))
		e.contentLen = uint32(len(blob))
		content = append(content, blob...)
	}

	return content
}
