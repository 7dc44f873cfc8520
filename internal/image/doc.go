// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package image implements the virtual node engine over a packed runtime
// image. An [Image] interprets absolute virtual paths, materializes
// directory, file and link nodes lazily from a [ResourceProvider] and
// memoizes them with stable identity, so two lookups of the same path
// always return the same [Node] pointer.
//
// The hierarchy has two top level trees: "/modules" mirrors the per module
// resource layout supplied by the provider, "/packages" is synthesized
// from the provider's package metadata and contains one symbolic link per
// module for every package.
//
// In preview mode an additional resource layer is overlaid on the module
// tree: preview resources shadow base resources of the same name and may
// add new files and directories. The "/packages" tree is never affected
// directly, only through the provider's package existence queries.
package image
