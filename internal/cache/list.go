// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// list is an intrusive doubly-linked list; front is most recently used.
type list[K comparable, V any] struct {
	front, tail *node[K, V]
}

func (l *list[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	}
	l.front = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *list[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (l *list[K, V]) moveToFront(n *node[K, V]) {
	if l.front == n {
		return
	}
	l.remove(n)
	l.pushFront(n)
}

func (l *list[K, V]) back() *node[K, V] { return l.tail }
