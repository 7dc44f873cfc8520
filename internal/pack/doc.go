// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package pack implements the packed runtime image container and the
// resource provider backed by it.
//
// An image file holds a location table describing every entry, a string
// table for entry names and a content section. Entries are keyed by path
// strings:
//
//   - File resources use "/<module>/<path>". Their location carries the
//     module, parent directory, base name and optional extension, and the
//     content is the resource bytes.
//   - The directory structure of the "/modules/..." namespace is stored as
//     pseudo-directory entries under the reserved module name "modules".
//     Their content is a sequence of 32-bit location offsets of their
//     children, in the image's byte order.
//   - The "/packages/..." namespace is stored the same way under the
//     reserved module name "packages". Its three-segment entries represent
//     the symbolic links and carry no content.
//
// Pseudo-directory entries are identified by their module name offset: all
// entries of one pseudo-module share the interned offset of the module
// string, so a single integer comparison distinguishes directories from
// file resources.
//
// The reserved subtree "<module>/META-INF/preview/..." holds the preview
// resource layer of a module.
package pack
