// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package export

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/aibor/rimfs/internal/image"
)

const fileMode = fs.FileMode(0o644)

// Writer defines the archive writer interface.
type Writer interface {
	WriteRegular(path string, content []byte, mode fs.FileMode) error
	WriteDirectory(path string) error
	WriteLink(path, target string) error
}

// Export writes the subtree rooted at the given absolute virtual path
// into the given writer. Entries are written depth first in child order
// with their virtual paths relative to the hierarchy root. The root
// directory itself is not written.
func Export(img *image.Image, root string, writer Writer) error {
	node, err := img.Find(root)
	if err != nil {
		return fmt.Errorf("find %q: %w", root, err)
	}

	if !node.IsDir() {
		return writeNode(node, writer)
	}

	return writeChildren(node, writer)
}

func writeChildren(dir *image.Node, writer Writer) error {
	children, err := dir.Children()
	if err != nil {
		return fmt.Errorf("children of %s: %w", dir, err)
	}

	for _, child := range children {
		if err := writeNode(child, writer); err != nil {
			return err
		}

		if !child.IsDir() {
			continue
		}

		if err := writeChildren(child, writer); err != nil {
			return err
		}
	}

	return nil
}

func writeNode(node *image.Node, writer Writer) error {
	name := archiveName(node)

	switch node.Kind() {
	case image.KindDirectory:
		if err := writer.WriteDirectory(name); err != nil {
			return fmt.Errorf("write directory %s: %w", name, err)
		}
	case image.KindLink:
		target := node.ResolveLink(false)
		if target == nil {
			return fmt.Errorf("resolve %s: %w", name, image.ErrNotExist)
		}

		if err := writer.WriteLink(name, archiveName(target)); err != nil {
			return fmt.Errorf("write link %s: %w", name, err)
		}
	default:
		content, err := node.Content()
		if err != nil {
			return fmt.Errorf("content of %s: %w", name, err)
		}

		if err := writer.WriteRegular(name, content, fileMode); err != nil {
			return fmt.Errorf("write file %s: %w", name, err)
		}
	}

	return nil
}

// archiveName is the virtual path without the leading "/".
func archiveName(node *image.Node) string {
	return strings.TrimPrefix(node.Path(), "/")
}
