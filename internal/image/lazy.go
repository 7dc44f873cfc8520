// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import "sync/atomic"

// memoized wraps a producer so it runs at most once per observed value.
// The first caller runs the producer, publishes the result and drops the
// producer reference. The read path is lock free. Two racing callers may
// both run the producer; each observes a fully computed value and once one
// is published no caller ever sees the absent state again. This is safe
// here because all producers route nested node construction through the
// node cache, so racing results are identical in content.
type memoized[T any] struct {
	value   atomic.Pointer[T]
	produce atomic.Pointer[func() T]
}

func newMemoized[T any](produce func() T) *memoized[T] {
	m := &memoized[T]{}
	m.produce.Store(&produce)

	return m
}

func (m *memoized[T]) get() T {
	if value := m.value.Load(); value != nil {
		return *value
	}

	if produce := m.produce.Load(); produce != nil {
		value := (*produce)()
		m.value.Store(&value)
		m.produce.Store(nil)

		return value
	}

	// The producer is only cleared after a value was published, so a
	// non-nil value can be read now.
	return *m.value.Load()
}
