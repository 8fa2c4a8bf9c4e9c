// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

// Cache is an append-only ordered history of standardized addresses. Entries
// are never mutated after insertion. The cache carries no locking of its own,
// it expects a single logical writer.
type Cache struct {
	entries []Standardized
}

// NewCache returns a new empty address Cache.
func NewCache() *Cache {
	return &Cache{}
}

// Insert appends the given address to the history and returns the previous
// entry alongside the inserted one. The previous entry is nil when the cache
// was empty before the insert.
func (c *Cache) Insert(addr Standardized) (previous *Standardized, current Standardized) {
	if n := len(c.entries); n > 0 {
		prev := c.entries[n-1]
		previous = &prev
	}
	c.entries = append(c.entries, addr)
	return previous, addr
}

// LastTwo returns the two most recent entries. Either pointer is nil when
// fewer entries exist.
func (c *Cache) LastTwo() (previous, current *Standardized) {
	n := len(c.entries)
	if n >= 1 {
		curr := c.entries[n-1]
		current = &curr
	}
	if n >= 2 {
		prev := c.entries[n-2]
		previous = &prev
	}
	return previous, current
}

// Clear empties the history. It does not touch any detector state, detectors
// keep their last notified signature until they are reset explicitly.
func (c *Cache) Clear() {
	c.entries = nil
}

// Size returns the number of entries in the history.
func (c *Cache) Size() int {
	return len(c.entries)
}

// IsEmpty reports whether the history holds no entries.
func (c *Cache) IsEmpty() bool {
	return len(c.entries) == 0
}
