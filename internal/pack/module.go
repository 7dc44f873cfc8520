// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/vpath"
)

// module is the cached per-module state of a [Provider].
type module struct {
	provider *Provider
	name     string

	// previewPrefix is the modules path of the module's preview subtree,
	// e.g. "java.base/META-INF/preview".
	previewPrefix string

	// previewPackages holds the dotted names of packages found in the
	// preview subtree whose non-preview directory also exists in this
	// module. Computed once when the module is first used.
	previewPackages []string
}

func newModule(provider *Provider, name string) *module {
	m := &module{
		provider:      provider,
		name:          name,
		previewPrefix: name + previewDir,
	}
	m.previewPackages = m.collectPreviewPackageNames()

	return m
}

// modulesPath translates a resource path into the modules path to probe:
// the path itself for the base layer, the preview-prefixed form for the
// preview layer.
func (m *module) modulesPath(resourcePath string, preview bool) string {
	if !preview {
		return resourcePath
	}

	return m.previewPrefix + resourcePath[len(m.name):]
}

// resourcePathOfDir translates a child pseudo-directory back into its
// resource path. In preview mode the location's path contains the preview
// prefix, which must be removed.
func (m *module) resourcePathOfDir(loc Location, preview bool) string {
	dirPath := loc.Base()
	if !preview {
		return dirPath
	}

	return m.name + dirPath[len(m.previewPrefix):]
}

// resourceNode materializes the node at the given resource path in the
// requested layer, or reports ErrNotExist.
func (m *module) resourceNode(
	resourcePath string,
	factory image.NodeFactory,
	preview bool,
) (*image.Node, error) {
	modPath := m.modulesPath(resourcePath, preview)
	reader := m.provider.reader

	if _, ok := m.provider.findModulesDir(modPath); ok {
		return factory.NewResourceDirectory(resourcePath), nil
	}

	if loc, ok := reader.FindLocation("/" + modPath); ok {
		return factory.NewResource(resourcePath, func() ([]byte, error) {
			return reader.Resource(loc)
		}), nil
	}

	return nil, ErrNotExist
}

// forEachChild emits each immediate child of the directory at the given
// resource path in the requested layer.
func (m *module) forEachChild(
	resourcePath string,
	factory image.NodeFactory,
	preview bool,
	fn func(*image.Node),
) {
	dir, ok := m.provider.findModulesDir(m.modulesPath(resourcePath, preview))
	if !ok {
		return
	}

	reader := m.provider.reader

	_ = reader.ForEachChild(dir, func(loc Location) {
		if m.provider.isDirectory(loc) {
			fn(factory.NewResourceDirectory(m.resourcePathOfDir(loc, preview)))

			return
		}

		// The child is a file resource; its name is base plus extension.
		name := loc.Base()
		if loc.ExtensionOffset() != 0 {
			name += "." + loc.Extension()
		}

		fn(factory.NewResource(resourcePath+"/"+name, func() ([]byte, error) {
			return reader.Resource(loc)
		}))
	})
}

// collectPreviewPackageNames walks the module's preview subtree and
// collects the dotted package name of every directory whose non-preview
// counterpart exists as well.
func (m *module) collectPreviewPackageNames() []string {
	dir, ok := m.provider.findModulesDir(m.previewPrefix)
	if !ok {
		return nil
	}

	var names []string

	m.walkPreviewDirs(dir, func(relPath string) {
		if m.provider.hasPackageDirectory(m.name + "/" + relPath) {
			names = append(names, vpath.PathToPackage(relPath))
		}
	})

	return names
}

func (m *module) walkPreviewDirs(dir Location, fn func(relPath string)) {
	_ = m.provider.reader.ForEachChild(dir, func(loc Location) {
		if !m.provider.isDirectory(loc) {
			return
		}

		fn(loc.Base()[len(m.previewPrefix)+1:])
		m.walkPreviewDirs(loc, fn)
	})
}
