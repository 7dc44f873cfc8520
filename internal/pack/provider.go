// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/vpath"
)

// previewDir is the reserved per-module subtree holding the preview
// resource layer.
const previewDir = "/META-INF/preview"

// Provider resolves resource paths against a packed runtime image. It
// implements [image.ResourceProvider].
//
// The provider is a scoped resource wrapping a [Reader]. After
// [Provider.Close], content reads fail with ErrClosed and lookups report
// absence.
type Provider struct {
	reader *Reader

	modulesRoot  Location
	packagesRoot Location

	// modulesNameOffset discriminates pseudo-directory entries of the
	// modules tree: they all share the interned offset of the string
	// "modules".
	modulesNameOffset uint32

	moduleNames []string
	moduleSet   map[string]struct{}

	modules sync.Map
}

var _ image.ResourceProvider = (*Provider)(nil)

// Open opens the image file at the given path and creates a Provider
// reading from it.
func Open(path string) (*Provider, error) {
	reader, err := OpenReader(path)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	return provider, nil
}

// NewProvider creates a Provider reading from the given image reader. The
// provider takes over the reader; closing the provider closes it.
func NewProvider(reader *Reader) (*Provider, error) {
	modulesRoot, ok := reader.FindLocation("/modules")
	if !ok {
		return nil, fmt.Errorf("%w: missing /modules root", ErrFormat)
	}

	packagesRoot, ok := reader.FindLocation("/packages")
	if !ok {
		return nil, fmt.Errorf("%w: missing /packages root", ErrFormat)
	}

	p := &Provider{
		reader:            reader,
		modulesRoot:       modulesRoot,
		packagesRoot:      packagesRoot,
		modulesNameOffset: modulesRoot.ModuleOffset(),
	}

	err := reader.ForEachChild(modulesRoot, func(loc Location) {
		p.moduleNames = append(p.moduleNames, loc.Base())
	})
	if err != nil {
		return nil, fmt.Errorf("load module names: %w", err)
	}

	p.moduleSet = make(map[string]struct{}, len(p.moduleNames))
	for _, name := range p.moduleNames {
		p.moduleSet[name] = struct{}{}
	}

	return p, nil
}

// Close releases the underlying image reader.
func (p *Provider) Close() error {
	return p.reader.Close()
}

// isDirectory returns whether a location is an entry of the "/modules"
// pseudo-directory tree.
func (p *Provider) isDirectory(loc Location) bool {
	return loc.ModuleOffset() == p.modulesNameOffset
}

// findModulesDir looks up the pseudo-directory for a relative modules
// path such as "java.base/java/lang".
func (p *Provider) findModulesDir(modulesPath string) (Location, bool) {
	return p.reader.FindLocation(modulesKey(modulesPath))
}

// hasPackageDirectory tests for a directory at a relative modules path
// such as "java.base/java/lang".
func (p *Provider) hasPackageDirectory(modulesPath string) bool {
	return p.reader.VerifyLocation(modulesKey(modulesPath))
}

// findModule returns the cached per-module state, creating it on first
// use, or nil for unknown module names.
func (p *Provider) findModule(name string) *module {
	if _, known := p.moduleSet[name]; !known {
		return nil
	}

	if cached, ok := p.modules.Load(name); ok {
		return cached.(*module) //nolint:forcetypeassert
	}

	cached, _ := p.modules.LoadOrStore(name, newModule(p, name))

	return cached.(*module) //nolint:forcetypeassert
}

// GetResource implements [image.ResourceProvider].
func (p *Provider) GetResource(
	resourcePath string,
	factory image.NodeFactory,
	preview bool,
) (*image.Node, error) {
	if resourcePath == "" {
		return factory.NewResourceDirectory(resourcePath), nil
	}

	name, _, deep := strings.Cut(resourcePath, "/")
	if !deep {
		// A single segment path is a module name and corresponds to a
		// directory.
		if _, known := p.moduleSet[resourcePath]; !known {
			return nil, ErrNotExist
		}

		return factory.NewResourceDirectory(resourcePath), nil
	}

	mod := p.findModule(name)
	if mod == nil {
		return nil, ErrNotExist
	}

	return mod.resourceNode(resourcePath, factory, preview)
}

// ForEachChildOf implements [image.ResourceProvider].
func (p *Provider) ForEachChildOf(
	factory image.NodeFactory,
	resourcePath string,
	preview bool,
	fn func(*image.Node),
) {
	if resourcePath == "" {
		for _, name := range p.moduleNames {
			fn(factory.NewResourceDirectory(name))
		}

		return
	}

	name, _, _ := strings.Cut(resourcePath, "/")
	if mod := p.findModule(name); mod != nil {
		mod.forEachChild(resourcePath, factory, preview, fn)
	}
}

// AllModuleNames implements [image.ResourceProvider].
func (p *Provider) AllModuleNames() []string {
	return p.moduleNames
}

// PackageNames implements [image.ResourceProvider].
func (p *Provider) PackageNames(preview bool) []string {
	var names []string

	_ = p.reader.ForEachChild(p.packagesRoot, func(loc Location) {
		names = append(names, loc.Base())
	})

	if preview {
		for _, name := range p.moduleNames {
			// Check the preview directory before creating the module.
			if !p.hasPackageDirectory(name + previewDir) {
				continue
			}

			names = append(names, p.findModule(name).previewPackages...)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// PackageExists implements [image.ResourceProvider].
func (p *Provider) PackageExists(moduleName, pkg string, preview bool) bool {
	pkgPath := "/" + vpath.PackageToPath(pkg)

	if p.hasPackageDirectory(moduleName + pkgPath) {
		return true
	}

	return preview && p.hasPackageDirectory(moduleName+previewDir+pkgPath)
}

// ModulesForPackage implements [image.ResourceProvider].
func (p *Provider) ModulesForPackage(pkg string, preview bool) []string {
	var modules []string

	for _, name := range p.moduleNames {
		if p.PackageExists(name, pkg, preview) {
			modules = append(modules, name)
		}
	}

	return modules
}
