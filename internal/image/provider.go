// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

// NodeFactory creates module tree nodes on behalf of a [ResourceProvider].
// Providers must produce nodes only through the factory so the engine can
// cache them under their absolute path, and must not retain the factory
// beyond the call it was passed to.
type NodeFactory interface {
	// NewResource creates a regular file node for the given resource path
	// with the given content producer.
	NewResource(resourcePath string, content func() ([]byte, error)) *Node

	// NewResourceDirectory creates a directory node for the given resource
	// path. Its child list is enumerated through the provider when first
	// demanded.
	NewResourceDirectory(resourcePath string) *Node
}

// ResourceProvider supplies module resources and package metadata to an
// [Image]. Resource paths are relative: empty for the root of the module
// universe, "<module>" or "<module>/<rest>" otherwise, never with a
// leading or trailing "/". The engine validates paths before calling the
// provider, so providers never see malformed input.
//
// Lookups report missing resources by returning ErrNotExist, never by
// failing with I/O errors. Content producers bound into file nodes may
// fail with I/O errors when invoked.
type ResourceProvider interface {
	// GetResource returns the node at the given resource path in the
	// requested layer, or ErrNotExist. The empty path yields the directory
	// for the module universe root in any layer.
	GetResource(resourcePath string, factory NodeFactory, preview bool) (*Node, error)

	// ForEachChildOf calls fn with each immediate child of the directory
	// at the given resource path in the requested layer, exactly once per
	// child. The empty path emits one directory per module.
	ForEachChildOf(factory NodeFactory, resourcePath string, preview bool, fn func(*Node))

	// AllModuleNames returns the names of all modules, including modules
	// that only have preview content. Ordering is arbitrary but stable.
	AllModuleNames() []string

	// PackageNames returns all dotted package names of the requested
	// layer. The engine memoizes the result, so it calls this once, or a
	// few times only if its first uses race.
	PackageNames(preview bool) []string

	// PackageExists returns whether the module contains the dotted
	// package, consulting the preview layer as well if requested. It is
	// cheap and may be called frequently.
	PackageExists(module, pkg string, preview bool) bool

	// ModulesForPackage returns the names of all modules containing the
	// dotted package, consulting the preview layer as well if requested.
	ModulesForPackage(pkg string, preview bool) []string
}
