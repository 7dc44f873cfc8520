// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vpath

import "strings"

// The two top level trees of the virtual hierarchy.
const (
	Modules  = "/modules"
	Packages = "/packages"
)

// IsValidAbsolute returns true if the given string is a well formed absolute
// virtual path. The empty string denotes the hierarchy root and is valid.
//
// The predicate is deliberately strict: "." and ".." never appear as
// segments, segments never start or end with ".", and consecutive dots or
// slashes are rejected. Lookups treat invalid paths as absent, so this must
// accept arbitrary input without panicking.
func IsValidAbsolute(path string) bool {
	if path == "" {
		return true
	}

	if path[0] != '/' {
		return false
	}

	return validSegments(path[1:])
}

// IsValidRelative returns true if the given string is a well formed,
// non-empty relative path as exchanged with resource providers.
func IsValidRelative(path string) bool {
	return validSegments(path)
}

// validSegments checks a "/" separated segment sequence. A "/" is only
// valid after a complete segment and a "." only after a regular character
// within a segment, so empty segments, leading or trailing dots and ".."
// can never occur. The final character must complete a segment as well.
func validSegments(s string) bool {
	if s == "" {
		return false
	}

	prev := byte('/')

	for i := range len(s) {
		switch c := s[i]; c {
		case '/', '.':
			if prev == '/' || prev == '.' {
				return false
			}

			prev = c
		default:
			prev = c
		}
	}

	return prev != '/' && prev != '.'
}

// IsRelativeTo returns true if path equals prefix or descends from it with
// a complete segment boundary. "/modules/a" is relative to "/modules", but
// "/modulesX" is not.
func IsRelativeTo(prefix, path string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}

	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Resolve joins a relative path onto a prefix. An empty relative path
// yields the prefix itself.
func Resolve(prefix, rel string) string {
	if rel == "" {
		return prefix
	}

	return prefix + "/" + rel
}

// Relativize strips the prefix from an absolute path. The path must be
// relative to the prefix as defined by [IsRelativeTo]. The result is ""
// if path equals prefix, the trailing segments without a leading "/"
// otherwise.
func Relativize(prefix, path string) string {
	if len(path) <= len(prefix) {
		return ""
	}

	return path[len(prefix)+1:]
}

// Base returns the final segment of the given path. It is empty for the
// hierarchy root only.
func Base(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}

	return path
}

// PackageToPath converts a dotted package name into its directory path
// form, e.g. "java.lang" to "java/lang".
func PackageToPath(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}

// PathToPackage converts a directory path into the dotted package name it
// corresponds to, e.g. "java/lang" to "java.lang".
func PathToPackage(path string) string {
	return strings.ReplaceAll(path, "/", ".")
}
