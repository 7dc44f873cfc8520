// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"slices"
	"strings"

	"github.com/aibor/rimfs/internal/vpath"
)

// Image is the virtual node engine. It dispatches path lookups across the
// root, "/modules" and "/packages" trees, composes the preview and base
// resource layers, synthesizes directories and links and owns the node
// cache.
//
// An Image is safe for concurrent use. It performs no I/O itself; time is
// spent in the provider, which may touch memory-mapped storage.
type Image struct {
	provider ResourceProvider
	preview  bool

	cache    nodeCache
	packages *memoized[packageSet]
}

// packageSet is the memoized package name universe of the engine's layer.
type packageSet struct {
	names []string
	set   map[string]struct{}
}

func (ps packageSet) contains(pkg string) bool {
	_, ok := ps.set[pkg]

	return ok
}

// New creates a new Image reading from the given provider. With preview
// set, the provider's preview layer is overlaid on the base layer: preview
// resources shadow base resources of the same name and may add new ones.
func New(provider ResourceProvider, preview bool) *Image {
	img := &Image{
		provider: provider,
		preview:  preview,
	}
	img.packages = newMemoized(img.loadPackageNames)

	return img
}

func (img *Image) loadPackageNames() packageSet {
	names := slices.Clone(img.provider.PackageNames(img.preview))
	slices.Sort(names)
	names = slices.Compact(names)

	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return packageSet{names: names, set: set}
}

// Find returns the node at the given absolute virtual path. The empty
// string denotes the hierarchy root. Invalid and non-existing paths are
// reported with ErrNotExist; Find never fails with I/O errors and never
// panics, regardless of input.
func (img *Image) Find(path string) (*Node, error) {
	if !vpath.IsValidAbsolute(path) {
		return nil, notExist(path)
	}

	if node := img.cache.lookup(path); node != nil {
		return node, nil
	}

	switch {
	case path == "":
		return img.rootNode(), nil
	case vpath.IsRelativeTo(vpath.Modules, path):
		return img.findModulesNode(path)
	case vpath.IsRelativeTo(vpath.Packages, path):
		return img.findPackagesNode(path)
	default:
		return nil, notExist(path)
	}
}

func notExist(path string) error {
	return &PathError{
		Op:   "find",
		Path: path,
		Err:  ErrNotExist,
	}
}

// rootNode synthesizes the hierarchy root with its two fixed sub-roots.
func (img *Image) rootNode() *Node {
	return img.newDirectory("", func() []*Node {
		return []*Node{
			img.modulesRootNode(),
			img.packagesRootNode(),
		}
	})
}

func (img *Image) modulesRootNode() *Node {
	return img.newDirectory(vpath.Modules, func() []*Node {
		return img.childResourceNodes("")
	})
}

func (img *Image) packagesRootNode() *Node {
	return img.newDirectory(vpath.Packages, img.packageRootNodes)
}

// findModulesNode resolves a path within "/modules" through the provider.
// In preview mode the preview layer is consulted first, so a preview
// resource shadows a base resource of the same path.
func (img *Image) findModulesNode(path string) (*Node, error) {
	resourcePath := vpath.Relativize(vpath.Modules, path)
	factory := nodeFactory{img}

	if img.preview {
		if node, err := img.provider.GetResource(resourcePath, factory, true); err == nil {
			return node, nil
		}
	}

	node, err := img.provider.GetResource(resourcePath, factory, false)
	if err != nil {
		return nil, notExist(path)
	}

	return node, nil
}

// findPackagesNode resolves a path within "/packages". Only the root, a
// package directory and a package link below it exist; any deeper path is
// absent.
func (img *Image) findPackagesNode(path string) (*Node, error) {
	rest := vpath.Relativize(vpath.Packages, path)
	if rest == "" {
		return img.packagesRootNode(), nil
	}

	pkg, module, deep := strings.Cut(rest, "/")
	if !deep {
		return img.packageDirectory(pkg)
	}

	if strings.ContainsRune(module, '/') {
		return nil, notExist(path)
	}

	return img.packageLink(pkg, module)
}

// packageDirectory returns the "/packages/<pkg>" directory. It exists iff
// the package is part of the memoized package name universe. Its children
// are one link per module containing the package, created lazily so
// building the listing does not materialize any module root.
func (img *Image) packageDirectory(pkg string) (*Node, error) {
	if !img.packages.get().contains(pkg) {
		return nil, notExist(vpath.Resolve(vpath.Packages, pkg))
	}

	path := vpath.Resolve(vpath.Packages, pkg)

	return img.newDirectory(path, func() []*Node {
		modules := img.provider.ModulesForPackage(pkg, img.preview)

		nodes := make([]*Node, 0, len(modules))
		for _, module := range modules {
			nodes = append(nodes, img.newLink(path+"/"+module, module))
		}

		return nodes
	}), nil
}

// packageLink returns the "/packages/<pkg>/<mod>" link. It exists iff the
// provider reports that the module contains the package in the engine's
// layer view.
func (img *Image) packageLink(pkg, module string) (*Node, error) {
	path := vpath.Resolve(vpath.Packages, pkg+"/"+module)

	if !img.provider.PackageExists(module, pkg, img.preview) {
		return nil, notExist(path)
	}

	return img.newLink(path, module), nil
}

// packageRootNodes returns the children of "/packages", one directory per
// known package name.
func (img *Image) packageRootNodes() []*Node {
	names := img.packages.get().names

	nodes := make([]*Node, 0, len(names))

	for _, name := range names {
		node, err := img.packageDirectory(name)
		if err != nil {
			continue
		}

		nodes = append(nodes, node)
	}

	return nodes
}

// childResourceNodes enumerates the immediate children of a module tree
// directory. Outside preview mode this is the plain base enumeration. In
// preview mode the preview children are collected first; if there are
// any, base children are added only where no preview child of the same
// final segment name exists.
func (img *Image) childResourceNodes(resourcePath string) []*Node {
	factory := nodeFactory{img}

	var nodes []*Node

	collect := func(node *Node) {
		nodes = append(nodes, node)
	}

	if img.preview {
		img.provider.ForEachChildOf(factory, resourcePath, true, collect)
	}

	if len(nodes) == 0 {
		img.provider.ForEachChildOf(factory, resourcePath, false, collect)

		return nodes
	}

	// Only search in the subset of nodes produced by the preview scan.
	existing := slices.Clone(nodes)
	slices.SortFunc(existing, compareByName)

	img.provider.ForEachChildOf(factory, resourcePath, false, func(node *Node) {
		if _, found := slices.BinarySearchFunc(existing, node, compareByName); !found {
			nodes = append(nodes, node)
		}
	})

	return nodes
}

// Only children of the same parent are compared, so comparison by final
// segment name is okay.
func compareByName(a, b *Node) int {
	return strings.Compare(vpath.Base(a.path), vpath.Base(b.path))
}

// newDirectory creates a directory node whose child list is produced on
// first use, sorted by final segment name and frozen.
func (img *Image) newDirectory(path string, children func() []*Node) *Node {
	node := &Node{
		path: path,
		kind: KindDirectory,
	}
	node.children = newMemoized(func() []*Node {
		nodes := children()
		slices.SortFunc(nodes, compareByName)

		return slices.Clip(nodes)
	})

	return img.cache.insert(node)
}

// newFile creates a regular file node with the given content producer.
func (img *Image) newFile(path string, content func() ([]byte, error)) *Node {
	node := &Node{
		path:    path,
		kind:    KindFile,
		content: content,
	}

	return img.cache.insert(node)
}

// newLink creates a link node targeting the directory of the given module.
// The target is late-bound: only the module name is stored until the link
// is first resolved through the engine.
func (img *Image) newLink(path, module string) *Node {
	node := &Node{
		path: path,
		kind: KindLink,
	}
	node.target = newMemoized(func() *Node {
		target, err := img.Find(vpath.Resolve(vpath.Modules, module))
		if err != nil {
			return nil
		}

		return target
	})

	return img.cache.insert(node)
}

// nodeFactory implements [NodeFactory] for an Image. Resource paths are
// translated into their absolute "/modules" form, so all provider produced
// nodes are cached consistently with engine produced ones.
type nodeFactory struct {
	img *Image
}

func (f nodeFactory) NewResource(resourcePath string, content func() ([]byte, error)) *Node {
	return f.img.newFile(vpath.Resolve(vpath.Modules, resourcePath), content)
}

func (f nodeFactory) NewResourceDirectory(resourcePath string) *Node {
	img := f.img

	return img.newDirectory(vpath.Resolve(vpath.Modules, resourcePath), func() []*Node {
		return img.childResourceNodes(resourcePath)
	})
}
