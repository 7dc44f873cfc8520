// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pack_test

import (
	"encoding/binary"
	"testing"

	"github.com/aibor/rimfs/internal/image"
	"github.com/aibor/rimfs/internal/pack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestProvider builds an image from the given files and returns a
// provider reading from it. Preview layer files are given as module
// relative paths below "META-INF/preview/".
func newTestProvider(tb testing.TB, files map[string]string) *pack.Provider {
	tb.Helper()

	reader, err := pack.NewReader(buildImage(tb, binary.LittleEndian, files))
	require.NoError(tb, err)

	provider, err := pack.NewProvider(reader)
	require.NoError(tb, err)

	tb.Cleanup(func() {
		require.NoError(tb, provider.Close())
	})

	return provider
}

func TestProviderNames(t *testing.T) {
	provider := newTestProvider(t, map[string]string{
		"mod.one/java/foo/Foo.class":                "foo",
		"mod.one/java/foo/sub/Sub.class":            "sub",
		"mod.two/java/bar/Bar.class":                "bar",
		"mod.two/META-INF/preview/java/bar/Extra":   "extra",
		"mod.two/META-INF/preview/java/gus/Only":    "only",
		"mod.three/java/foo/Other.class":            "other",
		"mod.three/META-INF/services/some.Provider": "svc",
	})

	assert.Equal(t,
		[]string{"mod.one", "mod.three", "mod.two"},
		provider.AllModuleNames())

	// Base layer packages exclude the reserved META-INF subtree.
	assert.Equal(t,
		[]string{"java", "java.bar", "java.foo", "java.foo.sub"},
		provider.PackageNames(false))

	// The preview walk only adds packages whose non-preview directory
	// exists as well, so "java.gus" stays invisible here.
	assert.Equal(t,
		[]string{"java", "java.bar", "java.foo", "java.foo.sub"},
		provider.PackageNames(true))

	assert.Equal(t,
		[]string{"mod.one", "mod.three"},
		provider.ModulesForPackage("java.foo", false))
	assert.Empty(t, provider.ModulesForPackage("java.gus", false))
	assert.Equal(t,
		[]string{"mod.two"},
		provider.ModulesForPackage("java.gus", true))

	assert.True(t, provider.PackageExists("mod.one", "java.foo", false))
	assert.False(t, provider.PackageExists("mod.two", "java.gus", false))
	assert.True(t, provider.PackageExists("mod.two", "java.gus", true))
	assert.False(t, provider.PackageExists("not.here", "java.foo", true))
}

func TestProviderWithImage(t *testing.T) {
	files := map[string]string{
		"mod.name/java/foo/First":                    "base first",
		"mod.name/java/foo/Second":                   "base second",
		"mod.name/META-INF/preview/java/foo/Second":  "preview second",
		"mod.name/META-INF/preview/java/gus/NewFile": "preview new",
		"other.mod/java/foo/Other.class":             "other",
	}

	t.Run("preview mode off", func(t *testing.T) {
		img := image.New(newTestProvider(t, files), false)

		second, err := img.Find("/modules/mod.name/java/foo/Second")
		require.NoError(t, err)

		content, err := second.Content()
		require.NoError(t, err)
		assert.Equal(t, "base second", string(content))

		_, err = img.Find("/modules/mod.name/java/gus")
		require.ErrorIs(t, err, image.ErrNotExist)

		_, err = img.Find("/packages/java.gus/mod.name")
		require.ErrorIs(t, err, image.ErrNotExist)

		// The preview subtree itself is part of the module tree.
		preview, err := img.Find("/modules/mod.name/META-INF/preview/java/foo/Second")
		require.NoError(t, err)

		content, err = preview.Content()
		require.NoError(t, err)
		assert.Equal(t, "preview second", string(content))
	})

	t.Run("preview mode on", func(t *testing.T) {
		img := image.New(newTestProvider(t, files), true)

		dir, err := img.Find("/modules/mod.name/java/foo")
		require.NoError(t, err)

		children, err := dir.Children()
		require.NoError(t, err)

		names := make([]string, len(children))
		for idx, child := range children {
			names[idx] = child.Path()
		}

		assert.Equal(t, []string{
			"/modules/mod.name/java/foo/First",
			"/modules/mod.name/java/foo/Second",
		}, names)

		// The preview layer shadows the base resource.
		content, err := children[1].Content()
		require.NoError(t, err)
		assert.Equal(t, "preview second", string(content))

		content, err = children[0].Content()
		require.NoError(t, err)
		assert.Equal(t, "base first", string(content))

		// Preview additions become visible, including their packages.
		newFile, err := img.Find("/modules/mod.name/java/gus/NewFile")
		require.NoError(t, err)

		content, err = newFile.Content()
		require.NoError(t, err)
		assert.Equal(t, "preview new", string(content))

		link, err := img.Find("/packages/java.gus/mod.name")
		require.NoError(t, err)
		require.True(t, link.IsLink())

		target, err := img.Find("/modules/mod.name")
		require.NoError(t, err)
		require.Same(t, target, link.ResolveLink(false))
	})

	t.Run("package links", func(t *testing.T) {
		img := image.New(newTestProvider(t, files), false)

		pkg, err := img.Find("/packages/java.foo")
		require.NoError(t, err)

		children, err := pkg.Children()
		require.NoError(t, err)
		require.Len(t, children, 2)

		assert.Equal(t, "/packages/java.foo/mod.name", children[0].Path())
		assert.Equal(t, "/packages/java.foo/other.mod", children[1].Path())
	})
}

func TestProviderClosed(t *testing.T) {
	reader, err := pack.NewReader(buildImage(t, binary.LittleEndian, map[string]string{
		"mod.name/java/foo/First": "first",
	}))
	require.NoError(t, err)

	provider, err := pack.NewProvider(reader)
	require.NoError(t, err)

	img := image.New(provider, false)

	first, err := img.Find("/modules/mod.name/java/foo/First")
	require.NoError(t, err)

	require.NoError(t, provider.Close())

	// Content of already materialized nodes fails after close.
	_, err = first.Content()
	require.ErrorIs(t, err, pack.ErrClosed)

	// New lookups report absence.
	_, err = img.Find("/modules/mod.name/java/foo/Second")
	require.ErrorIs(t, err, image.ErrNotExist)
}
