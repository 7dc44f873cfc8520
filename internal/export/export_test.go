// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package export_test

import (
	"bytes"
	"io"
	"io/fs"
	"testing"

	"github.com/aibor/rimfs/internal/export"
	"github.com/aibor/rimfs/internal/image"
	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImage(tb testing.TB) *image.Image {
	tb.Helper()

	provider := image.NewTestProvider([]string{
		"a/b/c/First",
		"d/e/Second",
	}, nil)

	return image.New(provider, false)
}

func TestExportModules(t *testing.T) {
	writer := &export.MockWriter{}

	err := export.Export(newTestImage(t), "/modules", writer)
	require.NoError(t, err)

	expected := []export.MockEntry{
		{Path: "modules/a", Mode: fs.ModeDir},
		{Path: "modules/a/b", Mode: fs.ModeDir},
		{Path: "modules/a/b/c", Mode: fs.ModeDir},
		{Path: "modules/a/b/c/First", Content: []byte("a/b/c/First"), Mode: 0o644},
		{Path: "modules/d", Mode: fs.ModeDir},
		{Path: "modules/d/e", Mode: fs.ModeDir},
		{Path: "modules/d/e/Second", Content: []byte("d/e/Second"), Mode: 0o644},
	}

	assert.Equal(t, expected, writer.Entries)
}

func TestExportPackages(t *testing.T) {
	writer := &export.MockWriter{}

	err := export.Export(newTestImage(t), "/packages", writer)
	require.NoError(t, err)

	expected := []export.MockEntry{
		{Path: "packages/b", Mode: fs.ModeDir},
		{Path: "packages/b/a", Target: "modules/a", Mode: fs.ModeSymlink},
		{Path: "packages/b.c", Mode: fs.ModeDir},
		{Path: "packages/b.c/a", Target: "modules/a", Mode: fs.ModeSymlink},
		{Path: "packages/e", Mode: fs.ModeDir},
		{Path: "packages/e/d", Target: "modules/d", Mode: fs.ModeSymlink},
	}

	assert.Equal(t, expected, writer.Entries)
}

func TestExportSingleFile(t *testing.T) {
	writer := &export.MockWriter{}

	err := export.Export(newTestImage(t), "/modules/a/b/c/First", writer)
	require.NoError(t, err)

	expected := []export.MockEntry{
		{Path: "modules/a/b/c/First", Content: []byte("a/b/c/First"), Mode: 0o644},
	}

	assert.Equal(t, expected, writer.Entries)
}

func TestExportErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		err := export.Export(newTestImage(t), "/modules/not.here", &export.MockWriter{})
		require.ErrorIs(t, err, image.ErrNotExist)
	})

	t.Run("writer error", func(t *testing.T) {
		writer := &export.MockWriter{Err: assert.AnError}

		err := export.Export(newTestImage(t), "/modules", writer)
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestCPIOWriter(t *testing.T) {
	var buf bytes.Buffer

	writer := export.NewCPIOWriter(&buf)

	err := export.Export(newTestImage(t), "/modules/a", writer)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	type entry struct {
		name    string
		mode    cpio.FileMode
		content string
	}

	var actual []entry

	reader := cpio.NewReader(&buf)

	for {
		hdr, err := reader.Next()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		content, err := io.ReadAll(reader)
		require.NoError(t, err)

		actual = append(actual, entry{
			name:    hdr.Name,
			mode:    hdr.Mode &^ cpio.ModePerm,
			content: string(content),
		})
	}

	expected := []entry{
		{"modules/a/b", cpio.TypeDir, ""},
		{"modules/a/b/c", cpio.TypeDir, ""},
		{"modules/a/b/c/First", cpio.TypeReg, "a/b/c/First"},
	}

	assert.Equal(t, expected, actual)
}
