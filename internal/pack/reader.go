// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

const (
	imageMagic   = 0x52494D47 // "RIMG"
	imageVersion = 1

	headerSize     = 16
	indexEntrySize = 8
	locationSize   = 24
)

// Location describes a single image entry: a file resource or a
// pseudo-directory. All fields are offsets into the reader's string and
// content sections.
type Location struct {
	reader *Reader

	offset     uint32
	module     uint32
	parent     uint32
	base       uint32
	ext        uint32
	contentOff uint32
	contentLen uint32
}

// Offset returns the byte offset of the location within the location
// table. Child offset arrays of pseudo-directories reference this value.
func (loc Location) Offset() uint32 {
	return loc.offset
}

// ModuleOffset returns the interned string offset of the module name.
// Entries of a pseudo-module all share one offset, which makes directory
// detection a single integer comparison.
func (loc Location) ModuleOffset() uint32 {
	return loc.module
}

// ExtensionOffset returns the interned string offset of the extension, or
// zero if the entry has none.
func (loc Location) ExtensionOffset() uint32 {
	return loc.ext
}

// Module returns the module name of the entry.
func (loc Location) Module() string {
	return loc.reader.stringAt(loc.module)
}

// Parent returns the parent directory path of a file resource.
func (loc Location) Parent() string {
	return loc.reader.stringAt(loc.parent)
}

// Base returns the base name of the entry. For pseudo-directories it is
// the relative path within the pseudo-module.
func (loc Location) Base() string {
	return loc.reader.stringAt(loc.base)
}

// Extension returns the extension of a file resource, without the dot.
func (loc Location) Extension() string {
	return loc.reader.stringAt(loc.ext)
}

// Reader reads a packed runtime image. It is safe for concurrent use.
//
// A Reader is a scoped resource: it may hold a memory-mapped region of the
// image file and must be released with [Reader.Close]. After close,
// resource reads fail with ErrClosed and lookups report absence.
type Reader struct {
	data   []byte
	mapped bool
	closed atomic.Bool

	order binary.ByteOrder
	count int

	strings   []byte
	index     []byte
	locations []byte
	content   []byte
}

// OpenReader memory-maps the image file at the given path read-only and
// parses its section layout.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}

	data, err := unix.Mmap(
		int(file.Fd()),
		0,
		int(info.Size()),
		unix.PROT_READ,
		unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("mmap image: %w", err)
	}

	reader, err := NewReader(data)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, err
	}

	reader.mapped = true

	return reader, nil
}

// NewReader parses an image from the given bytes. The slice must not be
// modified while the reader is in use.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}

	order, err := detectByteOrder(data)
	if err != nil {
		return nil, err
	}

	if version := order.Uint32(data[4:]); version != imageVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}

	count := int(order.Uint32(data[8:]))
	stringsSize := int(order.Uint32(data[12:]))

	stringsOff := headerSize
	indexOff := stringsOff + stringsSize
	locationsOff := indexOff + count*indexEntrySize
	contentOff := locationsOff + count*locationSize

	if stringsSize < 0 || count < 0 || contentOff > len(data) {
		return nil, fmt.Errorf("%w: truncated sections", ErrFormat)
	}

	return &Reader{
		data:      data,
		order:     order,
		count:     count,
		strings:   data[stringsOff:indexOff],
		index:     data[indexOff:locationsOff],
		locations: data[locationsOff:contentOff],
		content:   data[contentOff:],
	}, nil
}

// detectByteOrder determines the byte order the image was written in by
// matching the magic number in both orders.
func detectByteOrder(data []byte) (binary.ByteOrder, error) {
	switch {
	case binary.LittleEndian.Uint32(data) == imageMagic:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(data) == imageMagic:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: bad magic", ErrFormat)
	}
}

// ByteOrder returns the byte order the image was written in.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// Close releases the reader. It is safe to call multiple times.
func (r *Reader) Close() error {
	if r.closed.Swap(true) || !r.mapped {
		return nil
	}

	data := r.data
	r.data = nil

	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap image: %w", err)
	}

	return nil
}

// stringAt returns the NUL terminated string at the given offset of the
// string section. Out of range offsets yield the empty string.
func (r *Reader) stringAt(off uint32) string {
	if int(off) >= len(r.strings) {
		return ""
	}

	value := r.strings[off:]
	if end := bytes.IndexByte(value, 0); end >= 0 {
		value = value[:end]
	}

	return string(value)
}

// keyAt returns the lookup key of index entry i.
func (r *Reader) keyAt(i int) string {
	return r.stringAt(r.order.Uint32(r.index[i*indexEntrySize:]))
}

// locationAt returns the location at the given byte offset within the
// location table.
func (r *Reader) locationAt(off uint32) (Location, bool) {
	if int(off)+locationSize > len(r.locations) || off%locationSize != 0 {
		return Location{}, false
	}

	record := r.locations[off:]

	return Location{
		reader:     r,
		offset:     off,
		module:     r.order.Uint32(record[0:]),
		parent:     r.order.Uint32(record[4:]),
		base:       r.order.Uint32(record[8:]),
		ext:        r.order.Uint32(record[12:]),
		contentOff: r.order.Uint32(record[16:]),
		contentLen: r.order.Uint32(record[20:]),
	}, true
}

// FindLocation returns the location stored under the given key, e.g.
// "/java.base/java/lang/Integer.class" or "/modules/java.base/java/lang".
func (r *Reader) FindLocation(key string) (Location, bool) {
	if r.closed.Load() {
		return Location{}, false
	}

	idx := sort.Search(r.count, func(i int) bool {
		return r.keyAt(i) >= key
	})

	if idx >= r.count || r.keyAt(idx) != key {
		return Location{}, false
	}

	return r.locationAt(r.order.Uint32(r.index[idx*indexEntrySize+4:]))
}

// VerifyLocation returns whether an entry is stored under the given key.
func (r *Reader) VerifyLocation(key string) bool {
	_, ok := r.FindLocation(key)

	return ok
}

// Resource returns a copy of the content bytes of the given location.
func (r *Reader) Resource(loc Location) ([]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}

	end := int(loc.contentOff) + int(loc.contentLen)
	if end > len(r.content) {
		return nil, fmt.Errorf("%w: content out of range", ErrFormat)
	}

	return bytes.Clone(r.content[loc.contentOff:end]), nil
}

// ForEachChild decodes the child offset array of a pseudo-directory and
// calls fn with each child location.
func (r *Reader) ForEachChild(dir Location, fn func(Location)) error {
	data, err := r.Resource(dir)
	if err != nil {
		return err
	}

	if len(data)%4 != 0 {
		return fmt.Errorf("%w: malformed child offsets", ErrFormat)
	}

	for off := 0; off < len(data); off += 4 {
		child, ok := r.locationAt(r.order.Uint32(data[off:]))
		if !ok {
			return fmt.Errorf("%w: child offset out of range", ErrFormat)
		}

		fn(child)
	}

	return nil
}
