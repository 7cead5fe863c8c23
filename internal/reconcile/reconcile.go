// Package reconcile computes the set differences used when merging a
// client's local completion cache with server state.
//
// Two policies exist and must not be confused: the additive-only merge
// (Additions) runs silently at login and never removes anything the server
// already knows; the symmetric diff (Diff) runs only on an explicit sync
// action and produces removals as well.
package reconcile

// Additions returns the ids present in local but not in current, preserving
// local order and dropping duplicates. The result is safe to apply on
// login: server state always wins, and an empty or stale local cache can
// never shrink it.
func Additions(current, local []string) []string {
	have := make(map[string]bool, len(current))
	for _, id := range current {
		have[id] = true
	}

	var toAdd []string
	for _, id := range local {
		if id == "" || have[id] {
			continue
		}
		have[id] = true
		toAdd = append(toAdd, id)
	}
	return toAdd
}

// Diff compares current server state against a desired full set and returns
// what must change to make them equal. Applying the result twice is a no-op:
// the second call yields empty slices.
func Diff(current, desired []string) (toAdd, toRemove []string) {
	want := make(map[string]bool, len(desired))
	for _, id := range desired {
		if id != "" {
			want[id] = true
		}
	}
	have := make(map[string]bool, len(current))
	for _, id := range current {
		have[id] = true
	}

	seen := make(map[string]bool, len(desired))
	for _, id := range desired {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if !have[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if !want[id] {
			toRemove = append(toRemove, id)
		}
	}
	return toAdd, toRemove
}
