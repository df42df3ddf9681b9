package dialog

import "sort"

// SortOpts is the registry's sort configuration.
type SortOpts struct {
	By  AttrID
	Asc bool
}

// SetSort installs the active sort key. It takes the registry's write
// lock since it mutates shared state read by Sorted.
func (r *Registry) SetSort(opts SortOpts) {
	r.mu.Lock()
	r.sort = opts
	r.mu.Unlock()
}

// Sorted returns `all` stably sorted by the active sort key, ties broken
// on creation index.
func (r *Registry) Sorted() []*Call {
	r.mu.RLock()
	calls := make([]*Call, len(r.all))
	copy(calls, r.all)
	opts := r.sort
	r.mu.RUnlock()

	sort.SliceStable(calls, func(i, j int) bool {
		a, b := GetAttribute(calls[i], opts.By), GetAttribute(calls[j], opts.By)
		if a == b {
			return calls[i].Index < calls[j].Index
		}
		if opts.Asc {
			return a < b
		}
		return a > b
	})
	return calls
}
