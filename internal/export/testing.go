// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package export

import "io/fs"

// MockEntry records a single write to a [MockWriter].
type MockEntry struct {
	Path    string
	Target  string
	Content []byte
	Mode    fs.FileMode
}

var _ Writer = (*MockWriter)(nil)

// MockWriter implements [Writer] and records all written entries.
type MockWriter struct {
	Entries []MockEntry
	Err     error
}

func (m *MockWriter) WriteRegular(path string, content []byte, mode fs.FileMode) error {
	m.Entries = append(m.Entries, MockEntry{
		Path:    path,
		Content: content,
		Mode:    mode,
	})

	return m.Err
}

func (m *MockWriter) WriteDirectory(path string) error {
	m.Entries = append(m.Entries, MockEntry{
		Path: path,
		Mode: fs.ModeDir,
	})

	return m.Err
}

func (m *MockWriter) WriteLink(path, target string) error {
	m.Entries = append(m.Entries, MockEntry{
		Path:   path,
		Target: target,
		Mode:   fs.ModeSymlink,
	})

	return m.Err
}
