// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

// Kind defines the variant of a [Node].
type Kind int

const (
	// KindDirectory is a directory node with an ordered list of children.
	KindDirectory Kind = iota

	// KindFile is a regular file node whose content is loaded on demand.
	KindFile

	// KindLink is a symbolic link node pointing at a module directory.
	KindLink
)

// Node is a single entry of the virtual hierarchy. Nodes are created by an
// [Image] and cached under their absolute virtual path, so for each path
// at most one Node exists and clients may rely on pointer identity.
//
// The three variants form a closed family distinguished by [Node.Kind].
// Equality derives from the absolute path alone.
type Node struct {
	path string
	kind Kind

	// children is the memoized ordered child list of a directory.
	children *memoized[[]*Node]

	// content produces the resource bytes of a regular file.
	content func() ([]byte, error)

	// target is the memoized link target, resolved through the engine on
	// first access.
	target *memoized[*Node]
}

// Path returns the absolute virtual path of the node.
func (n *Node) Path() string {
	return n.path
}

// String returns the absolute virtual path of the node.
func (n *Node) String() string {
	return n.path
}

// Kind returns the variant of the node.
func (n *Node) Kind() Kind {
	return n.kind
}

// IsDir returns true if the node is a directory.
func (n *Node) IsDir() bool {
	return n.kind == KindDirectory
}

// IsLink returns true if the node is a symbolic link.
func (n *Node) IsLink() bool {
	return n.kind == KindLink
}

// Equal returns true if both nodes have the same absolute path. Nodes of
// the same [Image] additionally satisfy pointer equality.
func (n *Node) Equal(other *Node) bool {
	return other != nil && n.path == other.path
}

// Children returns the ordered child list of a directory node. The list is
// produced on first use, sorted ascending by final segment name, and
// immutable afterwards. It returns ErrNotDirectory for non-directories.
func (n *Node) Children() ([]*Node, error) {
	if n.kind != KindDirectory {
		return nil, &PathError{
			Op:   "children",
			Path: n.path,
			Err:  ErrNotDirectory,
		}
	}

	return n.children.get(), nil
}

// Content returns the resource bytes of a regular file node. It returns
// ErrNotFile for non-files. I/O errors of the underlying storage are
// propagated unchanged.
func (n *Node) Content() ([]byte, error) {
	if n.kind != KindFile {
		return nil, &PathError{
			Op:   "content",
			Path: n.path,
			Err:  ErrNotFile,
		}
	}

	return n.content()
}

// ResolveLink returns the target of a link node, resolving it on first
// access. With recursive set, links are chased transitively. Non-link
// nodes return themselves.
func (n *Node) ResolveLink(recursive bool) *Node {
	if n.kind != KindLink {
		return n
	}

	target := n.target.get()
	if target == nil || !recursive {
		return target
	}

	return target.ResolveLink(true)
}
