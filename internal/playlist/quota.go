package playlist

// Allocate computes per-artist song quotas for the target total.
//
// Every artist's quota starts at its seed count (capped by inventory) so
// seeds are never excluded. Remaining slots are distributed round-robin up
// to the even ideal share ceil(target/artists), favoring balance before any
// artist may dominate; leftover slots then go to whichever artists still
// have spare inventory. Terminates when a full pass makes no progress, so
// an inventory-starved pool yields sum(quota) < target rather than an error.
//
// Post-conditions: sum(quota) <= target, quota[a] >= seedCount[a], and
// quota[a] <= len(buckets[a]) for every artist a.
func Allocate(order []string, buckets map[string][]Song, seedCount map[string]int, target int) map[string]int {
	quotas := make(map[string]int, len(order))
	allocated := 0

	for _, a := range order {
		q := min(len(buckets[a]), seedCount[a])
		quotas[a] = q
		allocated += q
	}

	remaining := max(target-allocated, 0)
	if remaining == 0 || len(order) == 0 {
		return quotas
	}

	ideal := (target + len(order) - 1) / len(order)

	for remaining > 0 {
		progress := false
		for _, a := range order {
			if remaining == 0 {
				break
			}
			if quotas[a] < min(ideal, len(buckets[a])) {
				quotas[a]++
				remaining--
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	// Second pass: some artists hit the ideal cap while others ran out of
	// inventory, so let any artist with spare inventory absorb the rest.
	for remaining > 0 {
		progress := false
		for _, a := range order {
			if remaining == 0 {
				break
			}
			if quotas[a] < len(buckets[a]) {
				quotas[a]++
				remaining--
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	return quotas
}
