// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vfs adapts the virtual node engine to the standard library
// [io/fs.FS] surface. The file system is read only: directories, regular
// files and the symbolic links of the "/packages" tree are exposed with
// their engine semantics, so "modules/java.base" and
// "packages/java.lang/java.base" address the same nodes as the engine
// paths "/modules/java.base" and "/packages/java.lang/java.base".
//
// Open follows symbolic links. ReadLink and Lstat give access to links
// themselves.
package vfs
