// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package vpath implements the virtual path conventions of the runtime
// image hierarchy. Absolute paths are either empty (the hierarchy root) or
// start with "/". Resource paths are the relative form exchanged with
// resource providers and never have a leading "/". Both forms use "/"
// separated segments that must not be empty, must not start or end with
// "." and must not contain "..".
package vpath
