// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

// FieldValues holds the comparison value and the richer display value of a
// tracked address field for one side of a transition.
type FieldValues struct {
	Value   string
	Display string
}

// ChangeDetails is the structured payload describing a field transition. It
// is returned by ChangeDetails and passed to registered change callbacks.
type ChangeDetails struct {
	HasChanged bool
	Previous   FieldValues
	Current    FieldValues
}

// ChangeCallback is invoked synchronously when a detector confirms a not yet
// notified change. A callback must not call back into the detector or its
// owning manager.
type ChangeCallback func(details ChangeDetails)

// signature identifies a specific (previous, current) value transition. Two
// transitions are the same notification if and only if their signatures are
// equal.
type signature struct {
	prev string
	curr string
}

// Detector tracks a single address field across the last two cache entries
// and deduplicates notifications by transition signature.
type Detector struct {
	name    string
	cache   *Cache
	value   func(Standardized) string
	display func(Standardized) string

	lastNotified *signature
	callback     ChangeCallback
}

// NewDetector returns a Detector for the field selected by the value
// extractor. The display extractor selects the value surfaced in change
// details, it may be the same as the value extractor.
func NewDetector(name string, cache *Cache, value, display func(Standardized) string) *Detector {
	return &Detector{
		name:    name,
		cache:   cache,
		value:   value,
		display: display,
	}
}

// Name returns the name of the tracked field.
func (d *Detector) Name() string {
	return d.name
}

// HasChanged reports whether the tracked field differs between the last two
// cache entries and the transition has not been notified yet. It is a
// read-and-acknowledge operation, not a pure query: a confirmed change
// records its signature and fires the registered callback, so an unreported
// difference returns true exactly once.
func (d *Detector) HasChanged() bool {
	prev, curr := d.cache.LastTwo()
	if prev == nil || curr == nil {
		return false
	}
	prevVal, currVal := d.value(*prev), d.value(*curr)
	if prevVal == currVal {
		return false
	}
	sig := signature{prev: prevVal, curr: currVal}
	if d.lastNotified != nil && *d.lastNotified == sig {
		return false
	}
	d.lastNotified = &sig
	if d.callback != nil {
		d.callback(ChangeDetails{
			HasChanged: true,
			Previous:   FieldValues{Value: prevVal, Display: d.display(*prev)},
			Current:    FieldValues{Value: currVal, Display: d.display(*curr)},
		})
	}
	return true
}

// ChangeDetails re-derives the comparison of the last two cache entries
// without touching the notification signature. The second return value is
// false when the cache holds fewer than two entries.
func (d *Detector) ChangeDetails() (ChangeDetails, bool) {
	prev, curr := d.cache.LastTwo()
	if prev == nil || curr == nil {
		return ChangeDetails{}, false
	}
	prevVal, currVal := d.value(*prev), d.value(*curr)
	return ChangeDetails{
		HasChanged: prevVal != currVal,
		Previous:   FieldValues{Value: prevVal, Display: d.display(*prev)},
		Current:    FieldValues{Value: currVal, Display: d.display(*curr)},
	}, true
}

// SetCallback replaces the registered change callback. A nil callback
// disables notification without affecting the deduplication state.
func (d *Detector) SetCallback(cb ChangeCallback) {
	d.callback = cb
}

// Reset clears the last notified signature so the next confirmed change is
// reported again.
func (d *Detector) Reset() {
	d.lastNotified = nil
}
