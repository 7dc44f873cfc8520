// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import "sync"

// nodeCache is a concurrent mapping from absolute virtual path to node
// with compute-if-absent semantics. All node constructors route through
// it, which guarantees at most one node object per path for the lifetime
// of an [Image]. The cache grows monotonically, there is no eviction.
//
// The cache is a flat map, not a tree. Children hold only forward
// references and are discovered by re-keying into the cache, so there are
// no parent back-pointers that could form cycles with lazy child lists.
type nodeCache struct {
	nodes sync.Map
}

// lookup returns the cached node for the given path, or nil.
func (c *nodeCache) lookup(path string) *Node {
	if value, ok := c.nodes.Load(path); ok {
		return value.(*Node) //nolint:forcetypeassert
	}

	return nil
}

// insert publishes the given node under its path. If another node won a
// racing insert, that node is returned and the candidate is discarded
// without ever being exposed.
func (c *nodeCache) insert(node *Node) *Node {
	actual, _ := c.nodes.LoadOrStore(node.path, node)

	return actual.(*Node) //nolint:forcetypeassert
}
