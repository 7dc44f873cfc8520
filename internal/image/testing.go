// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import (
	"slices"
	"strings"
	"sync"

	"github.com/aibor/rimfs/internal/vpath"
)

// TestProvider is an in-memory [ResourceProvider] backed by plain path
// lists. It is the reference fixture for engine tests and front-end tests
// that do not need a real packed image.
//
// The content of a file is its resource path in UTF-8; preview layer
// content carries a trailing "*" so layer precedence is observable. All
// node creations in the module tree are logged by absolute path, which
// lets tests assert lazy creation.
type TestProvider struct {
	files   map[string]bool
	preview map[string]bool

	modules      []string
	basePackages []string
	allPackages  []string

	mu  sync.Mutex
	log map[string]struct{}
}

// NewTestProvider creates a TestProvider holding the given base and
// preview layer files. Paths are module-relative resource paths like
// "mod.one/java/foo/Foo.class"; parent directories are implied.
func NewTestProvider(files, preview []string) *TestProvider {
	p := &TestProvider{
		files:   make(map[string]bool),
		preview: make(map[string]bool),
		log:     make(map[string]struct{}),
	}

	fillPathMap(p.files, files)
	fillPathMap(p.preview, preview)

	p.modules = topLevelDirs(p.files, p.preview)
	p.basePackages = packageNames(p.files)
	p.allPackages = packageNames(p.files, p.preview)

	return p
}

// fillPathMap records each file and all its implied parent directories.
// The value marks whether the path is a directory.
func fillPathMap(paths map[string]bool, files []string) {
	for _, file := range files {
		paths[file] = false

		for dir := parentDir(file); dir != ""; dir = parentDir(dir) {
			paths[dir] = true
		}
	}
}

func parentDir(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}

	return ""
}

func topLevelDirs(layers ...map[string]bool) []string {
	var names []string

	for _, layer := range layers {
		for path, isDir := range layer {
			if isDir && !strings.ContainsRune(path, '/') {
				names = append(names, path)
			}
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// packageNames derives dotted package names from all directories below a
// module root, e.g. "mod/foo/bar" yields "foo.bar".
func packageNames(layers ...map[string]bool) []string {
	var names []string

	for _, layer := range layers {
		for path, isDir := range layer {
			if !isDir {
				continue
			}

			if _, rest, found := strings.Cut(path, "/"); found {
				names = append(names, vpath.PathToPackage(rest))
			}
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}

// Created reports whether a node was created for the given absolute
// "/modules" tree path.
func (p *TestProvider) Created(absPath string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.log[absPath]

	return ok
}

// newNode creates a node through the factory and logs its creation.
func (p *TestProvider) newNode(
	resourcePath string,
	isDir bool,
	factory NodeFactory,
	preview bool,
) *Node {
	var node *Node

	if isDir {
		node = factory.NewResourceDirectory(resourcePath)
	} else {
		content := resourcePath
		if preview {
			content += "*"
		}

		node = factory.NewResource(resourcePath, func() ([]byte, error) {
			return []byte(content), nil
		})
	}

	p.mu.Lock()
	p.log[node.Path()] = struct{}{}
	p.mu.Unlock()

	return node
}

func (p *TestProvider) layer(preview bool) map[string]bool {
	if preview {
		return p.preview
	}

	return p.files
}

// GetResource implements [ResourceProvider].
func (p *TestProvider) GetResource(
	resourcePath string,
	factory NodeFactory,
	preview bool,
) (*Node, error) {
	if resourcePath == "" {
		return p.newNode(resourcePath, true, factory, preview), nil
	}

	isDir, exists := p.layer(preview)[resourcePath]
	if !exists {
		return nil, ErrNotExist
	}

	return p.newNode(resourcePath, isDir, factory, preview), nil
}

// ForEachChildOf implements [ResourceProvider].
func (p *TestProvider) ForEachChildOf(
	factory NodeFactory,
	resourcePath string,
	preview bool,
	fn func(*Node),
) {
	prefix := resourcePath
	if prefix != "" {
		prefix += "/"
	}

	for path, isDir := range p.layer(preview) {
		if !strings.HasPrefix(path, prefix) || len(path) == len(prefix) {
			continue
		}

		if strings.ContainsRune(path[len(prefix):], '/') {
			continue
		}

		fn(p.newNode(path, isDir, factory, preview))
	}
}

// AllModuleNames implements [ResourceProvider].
func (p *TestProvider) AllModuleNames() []string {
	return p.modules
}

// PackageNames implements [ResourceProvider].
func (p *TestProvider) PackageNames(preview bool) []string {
	if preview {
		return p.allPackages
	}

	return p.basePackages
}

// PackageExists implements [ResourceProvider].
func (p *TestProvider) PackageExists(module, pkg string, preview bool) bool {
	path := module + "/" + vpath.PackageToPath(pkg)

	if p.files[path] {
		return true
	}

	return preview && p.preview[path]
}

// ModulesForPackage implements [ResourceProvider].
func (p *TestProvider) ModulesForPackage(pkg string, preview bool) []string {
	var modules []string

	for _, module := range p.modules {
		if p.PackageExists(module, pkg, preview) {
			modules = append(modules, module)
		}
	}

	return modules
}
