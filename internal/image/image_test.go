// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image_test

import (
	"testing"

	"github.com/aibor/rimfs/internal/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireNode(t *testing.T, img *image.Image, path string) *image.Node {
	t.Helper()

	node, err := img.Find(path)
	require.NoError(t, err, "missing node: %s", path)

	return node
}

func requireContent(t *testing.T, expected string, node *image.Node) {
	t.Helper()

	require.False(t, node.IsDir())
	require.False(t, node.IsLink())

	content, err := node.Content()
	require.NoError(t, err)
	assert.Equal(t, expected, string(content), "unexpected node content")
}

func TestBasicLazyNodeCreation(t *testing.T) {
	provider := image.NewTestProvider([]string{
		"mod.one/java/foo/Foo.class",
		"mod.two/java/bar/Bar.class",
	}, nil)
	img := image.New(provider, false)

	// Normal file lookup does not create the containing directory.
	node := requireNode(t, img, "/modules/mod.one/java/foo/Foo.class")
	assert.False(t, node.IsDir())
	requireContent(t, "mod.one/java/foo/Foo.class", node)
	assert.False(t, provider.Created("/modules/mod.one/java/foo"))

	// Package links are late-bound: creating the link does not create the
	// linked module directory.
	assert.False(t, provider.Created("/modules/mod.two"))
	modLink := requireNode(t, img, "/packages/java.bar/mod.two")
	assert.True(t, modLink.IsLink())
	assert.False(t, provider.Created("/modules/mod.two"))

	// Resolving the link materializes the module directory, but nothing
	// inside it.
	modTwo := requireNode(t, img, "/modules/mod.two")
	require.Same(t, modTwo, modLink.ResolveLink(false))
	assert.False(t, provider.Created("/modules/mod.two/java"))

	// The /modules directory lists both modules.
	modOne := requireNode(t, img, "/modules/mod.one")
	modRoot := requireNode(t, img, "/modules")

	children, err := modRoot.Children()
	require.NoError(t, err)
	assert.Equal(t, []*image.Node{modOne, modTwo}, children)

	// Directory traversal from the root reaches the identical objects.
	root := requireNode(t, img, "")

	rootChildren, err := root.Children()
	require.NoError(t, err)
	require.Len(t, rootChildren, 2)
	require.Same(t, modRoot, rootChildren[0])
	assert.Equal(t, "/packages", rootChildren[1].Path())
}

func TestFindIdentity(t *testing.T) {
	provider := image.NewTestProvider([]string{
		"mod.one/java/foo/Foo.class",
		"mod.two/java/bar/Bar.class",
	}, nil)
	img := image.New(provider, false)

	paths := []string{
		"",
		"/modules",
		"/modules/mod.one",
		"/modules/mod.one/java/foo",
		"/modules/mod.one/java/foo/Foo.class",
		"/packages",
		"/packages/java.foo",
		"/packages/java.foo/mod.one",
	}

	for _, path := range paths {
		first := requireNode(t, img, path)
		second := requireNode(t, img, path)
		require.Same(t, first, second, "path: %s", path)
	}
}

func TestFindIdentityConcurrent(t *testing.T) {
	provider := image.NewTestProvider([]string{
		"mod.one/java/foo/Foo.class",
		"mod.two/java/bar/Bar.class",
	}, nil)
	img := image.New(provider, false)

	paths := []string{
		"",
		"/modules",
		"/modules/mod.one/java/foo",
		"/modules/mod.two/java/bar/Bar.class",
		"/packages/java.bar",
		"/packages/java.bar/mod.two",
	}

	const workers = 8

	results := make([][]*image.Node, workers)

	eg := errgroup.Group{}

	for worker := range workers {
		eg.Go(func() error {
			nodes := make([]*image.Node, len(paths))

			for idx, path := range paths {
				node, err := img.Find(path)
				if err != nil {
					return err
				}

				nodes[idx] = node
			}

			results[worker] = nodes

			return nil
		})
	}

	require.NoError(t, eg.Wait())

	for worker := 1; worker < workers; worker++ {
		for idx := range paths {
			require.Same(t, results[0][idx], results[worker][idx],
				"worker %d, path %s", worker, paths[idx])
		}
	}
}

func TestPreviewFileReplace(t *testing.T) {
	files := []string{
		"mod.name/java/foo/First",
		"mod.name/java/foo/Second",
		"mod.name/java/foo/Third",
	}
	preview := []string{
		"mod.name/java/foo/Second",
	}

	img := image.New(image.NewTestProvider(files, preview), true)

	first := requireNode(t, img, "/modules/mod.name/java/foo/First")
	second := requireNode(t, img, "/modules/mod.name/java/foo/Second")
	third := requireNode(t, img, "/modules/mod.name/java/foo/Third")

	dir := requireNode(t, img, "/modules/mod.name/java/foo")
	require.True(t, dir.IsDir())

	children, err := dir.Children()
	require.NoError(t, err)
	assert.Equal(t, []*image.Node{first, second, third}, children)

	// One of the three comes from the preview layer.
	requireContent(t, "mod.name/java/foo/First", first)
	requireContent(t, "mod.name/java/foo/Second*", second)
	requireContent(t, "mod.name/java/foo/Third", third)

	// Outside preview mode the node carries the base content.
	noPreview := image.New(image.NewTestProvider(files, preview), false)
	requireContent(t, "mod.name/java/foo/Second",
		requireNode(t, noPreview, "/modules/mod.name/java/foo/Second"))
}

func TestPreviewFileAddition(t *testing.T) {
	files := []string{
		"mod.name/java/foo/First",
		"mod.name/java/foo/Third",
	}
	preview := []string{
		"mod.name/java/foo/Second",
		"mod.name/java/foo/Xtra",
	}

	img := image.New(image.NewTestProvider(files, preview), true)

	first := requireNode(t, img, "/modules/mod.name/java/foo/First")
	second := requireNode(t, img, "/modules/mod.name/java/foo/Second")
	third := requireNode(t, img, "/modules/mod.name/java/foo/Third")
	last := requireNode(t, img, "/modules/mod.name/java/foo/Xtra")

	dir := requireNode(t, img, "/modules/mod.name/java/foo")

	children, err := dir.Children()
	require.NoError(t, err)
	assert.Equal(t, []*image.Node{first, second, third, last}, children)

	requireContent(t, "mod.name/java/foo/First", first)
	requireContent(t, "mod.name/java/foo/Second*", second)
	requireContent(t, "mod.name/java/foo/Third", third)
	requireContent(t, "mod.name/java/foo/Xtra*", last)

	// The preview additions are invisible outside preview mode.
	noPreview := image.New(image.NewTestProvider(files, preview), false)

	_, err = noPreview.Find("/modules/mod.name/java/foo/Second")
	require.ErrorIs(t, err, image.ErrNotExist)

	_, err = noPreview.Find("/modules/mod.name/java/foo/Xtra")
	require.ErrorIs(t, err, image.ErrNotExist)
}

func TestPreviewDirectoryAddition(t *testing.T) {
	files := []string{
		"mod.name/java/foo/First",
		"mod.name/java/foo/Second",
	}
	preview := []string{
		"mod.name/java/foo/bar/SubDirFile",
		"mod.name/java/gus/OtherDirFile",
	}

	img := image.New(image.NewTestProvider(files, preview), true)

	first := requireNode(t, img, "/modules/mod.name/java/foo/First")
	second := requireNode(t, img, "/modules/mod.name/java/foo/Second")

	subDir := requireNode(t, img, "/modules/mod.name/java/foo/bar")
	require.True(t, subDir.IsDir())

	dir := requireNode(t, img, "/modules/mod.name/java/foo")

	children, err := dir.Children()
	require.NoError(t, err)
	assert.Equal(t, []*image.Node{first, second, subDir}, children)

	// Preview files may create entirely new directories and packages.
	requireNode(t, img, "/modules/mod.name/java/foo/bar/SubDirFile")
	requireNode(t, img, "/modules/mod.name/java/gus/OtherDirFile")

	link := requireNode(t, img, "/packages/java.gus/mod.name")
	require.True(t, link.IsLink())
	require.Same(t, requireNode(t, img, "/modules/mod.name"), link.ResolveLink(false))

	// None of this exists outside preview mode.
	noPreview := image.New(image.NewTestProvider(files, preview), false)

	for _, path := range []string{
		"/modules/mod.name/java/foo/bar",
		"/modules/mod.name/java/gus",
		"/packages/java.gus/mod.name",
	} {
		_, err := noPreview.Find(path)
		require.ErrorIs(t, err, image.ErrNotExist, "path: %s", path)
	}
}

func TestTopLevelNonDirectory(t *testing.T) {
	files := []string{
		"mod.name/java/foo/First",
		"not.a.directory",
		"mod.name/java/foo/Second",
	}
	preview := []string{
		"normal.file",
		"mod.name/java/bar/Other",
	}

	img := image.New(image.NewTestProvider(files, preview), true)

	// Top level files can exist, but they are not module names.
	assert.False(t, requireNode(t, img, "/modules/not.a.directory").IsDir())
	assert.False(t, requireNode(t, img, "/modules/normal.file").IsDir())

	packages := requireNode(t, img, "/packages")
	pkgJava := requireNode(t, img, "/packages/java")
	pkgFoo := requireNode(t, img, "/packages/java.foo")
	pkgBar := requireNode(t, img, "/packages/java.bar")

	children, err := packages.Children()
	require.NoError(t, err)
	assert.Equal(t, []*image.Node{pkgJava, pkgBar, pkgFoo}, children)
}

func TestBadPaths(t *testing.T) {
	img := image.New(image.NewTestProvider([]string{
		"a/b/c/First",
		"a/b/c/Second",
	}, nil), false)

	goodPaths := []string{
		"",
		"/modules",
		"/modules/a",
		"/modules/a/b",
		"/modules/a/b/c",
		"/modules/a/b/c/First",
		"/packages",
		"/packages/b.c",
		"/packages/b.c/a",
	}
	for _, path := range goodPaths {
		_, err := img.Find(path)
		require.NoError(t, err, "good path should be present: %q", path)
	}

	// None of these may panic, users are allowed to ask for anything.
	badPaths := []string{
		".", "..", "//",
		"/modules/",
		"/modules/.",
		"/modules//",
		"/modules/a..b",
		"/modules/.a",
		"/modules/a.",
		"/modules/not.here",
		"/modules/a/b/not/here",
		"/packages/",
		"/packages/.",
		"/packages//",
		"/packages/a..b",
		"/packages/.a.b",
		"/packages/a.b.",
		"/packages/not.here",
		"/packages/b.c/missing",
		"/modules/a/b/c/First/xxx",
		"/packages/b.c/a/xxx",
	}
	for _, path := range badPaths {
		_, err := img.Find(path)
		require.ErrorIs(t, err, image.ErrNotExist,
			"bad path should be absent: %q", path)
	}
}

func TestPackageLinksUniformity(t *testing.T) {
	files := []string{
		"one/j/foo/F",
		"two/j/bar/B",
	}
	preview := []string{
		"three/j/foo/preview/P",
	}

	img := image.New(image.NewTestProvider(files, preview), true)

	pkg := requireNode(t, img, "/packages/j.foo")
	require.True(t, pkg.IsDir())

	children, err := pkg.Children()
	require.NoError(t, err)
	require.NotEmpty(t, children)

	targets := make(map[string]struct{})

	for _, child := range children {
		require.True(t, child.IsLink(), "child: %s", child)
		targets[child.ResolveLink(false).Path()] = struct{}{}
	}

	assert.Equal(t, map[string]struct{}{
		"/modules/one":   {},
		"/modules/three": {},
	}, targets)
}

func TestNodeOperations(t *testing.T) {
	img := image.New(image.NewTestProvider([]string{
		"a/b/c/First",
	}, nil), false)

	dir := requireNode(t, img, "/modules/a/b")
	file := requireNode(t, img, "/modules/a/b/c/First")
	link := requireNode(t, img, "/packages/b.c/a")

	t.Run("children of non-directory", func(t *testing.T) {
		_, err := file.Children()
		require.ErrorIs(t, err, image.ErrNotDirectory)

		_, err = link.Children()
		require.ErrorIs(t, err, image.ErrNotDirectory)
	})

	t.Run("content of non-file", func(t *testing.T) {
		_, err := dir.Content()
		require.ErrorIs(t, err, image.ErrNotFile)

		_, err = link.Content()
		require.ErrorIs(t, err, image.ErrNotFile)
	})

	t.Run("resolve non-link", func(t *testing.T) {
		require.Same(t, dir, dir.ResolveLink(false))
		require.Same(t, file, file.ResolveLink(true))
	})

	t.Run("resolve link recursively", func(t *testing.T) {
		target := requireNode(t, img, "/modules/a")
		require.Same(t, target, link.ResolveLink(true))
	})

	t.Run("string and equality", func(t *testing.T) {
		assert.Equal(t, "/modules/a/b", dir.String())
		assert.True(t, dir.Equal(dir))
		assert.False(t, dir.Equal(file))
		assert.False(t, dir.Equal(nil))
	})
}
