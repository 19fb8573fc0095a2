package tilestore

// mruList is an intrusive doubly-linked list of tiles.
// The list is not thread-safe; callers must handle synchronization.
//
// The head is the most recently used, tail is least recently used.
type mruList struct {
	head *Tile
	tail *Tile
	len  int
}

// Len returns the number of tiles in the list.
func (l *mruList) Len() int {
	return l.len
}

// PushFront adds a tile at the front (most recently used).
func (l *mruList) PushFront(t *Tile) {
	t.prev = nil
	t.next = l.head
	if l.head != nil {
		l.head.prev = t
	}
	l.head = t
	if l.tail == nil {
		l.tail = t
	}
	l.len++
}

// MoveToFront moves an existing tile to the front.
func (l *mruList) MoveToFront(t *Tile) {
	if t == nil || t == l.head {
		return
	}
	l.unlink(t)
	l.PushFront(t)
}

// Remove removes a tile from the list.
func (l *mruList) Remove(t *Tile) {
	if t == nil {
		return
	}
	l.unlink(t)
}

// Oldest returns the least recently used tile, or nil.
func (l *mruList) Oldest() *Tile {
	return l.tail
}

// Clear removes all tiles from the list.
func (l *mruList) Clear() {
	for t := l.head; t != nil; {
		next := t.next
		t.prev, t.next = nil, nil
		t = next
	}
	l.head = nil
	l.tail = nil
	l.len = 0
}

// unlink removes a tile from the list and clears its links.
func (l *mruList) unlink(t *Tile) {
	if t.prev != nil {
		t.prev.next = t.next
	} else {
		l.head = t.next
	}

	if t.next != nil {
		t.next.prev = t.prev
	} else {
		l.tail = t.prev
	}

	t.prev = nil
	t.next = nil
	l.len--
}
