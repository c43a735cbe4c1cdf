package playlist

// Sequence produces the final ordered playlist from per-artist buckets.
//
// Each pass scans artists in the fixed order and emits the next bucket item
// for every artist that still has quota and inventory, skipping any pick that
// would extend the previous artist's run past maxConsecutive. When a full
// pass is blocked solely by the run rule, one relaxed pick (first eligible
// artist in order, run rule ignored) guarantees forward progress. Earlier
// artists in the order are favored whenever several are equally eligible.
//
// Output is fully determined by its inputs: no randomness, no map iteration.
func Sequence(order []string, buckets map[string][]Song, quotas map[string]int, maxConsecutive int) []Song {
	if maxConsecutive <= 0 {
		maxConsecutive = 2
	}

	used := make(map[string]int, len(order))
	cursor := make(map[string]int, len(order))
	var out []Song

	lastArtist := ""
	run := 0

	emit := func(a string) {
		out = append(out, buckets[a][cursor[a]])
		cursor[a]++
		used[a]++
		if a == lastArtist {
			run++
		} else {
			lastArtist = a
			run = 1
		}
	}

	eligible := func(a string) bool {
		return used[a] < quotas[a] && cursor[a] < len(buckets[a])
	}

	for {
		emitted := false
		for _, a := range order {
			if !eligible(a) {
				continue
			}
			if a == lastArtist && run >= maxConsecutive {
				continue
			}
			emit(a)
			emitted = true
		}
		if emitted {
			continue
		}

		// Either the pool is exhausted, or every remaining artist is blocked
		// by the run rule. A single relaxed pick keeps the loop moving.
		relaxed := ""
		for _, a := range order {
			if eligible(a) {
				relaxed = a
				break
			}
		}
		if relaxed == "" {
			break
		}
		emit(relaxed)
	}

	return out
}

// EnsureSeeds force-inserts any normalized seed missing from the sequence at
// the front, preserving seed input order, then truncates to target. Seeds can
// go missing when quota or bucket limits squeezed their artist out.
func EnsureSeeds(sequence []Song, seeds []Song, target int) []Song {
	present := make(map[string]bool, len(sequence))
	for _, s := range sequence {
		present[s.Key()] = true
	}

	var missing []Song
	for _, seed := range seeds {
		if !present[seed.Key()] {
			missing = append(missing, seed)
			present[seed.Key()] = true
		}
	}

	out := append(missing, sequence...)
	if target > 0 && len(out) > target {
		out = out[:target]
	}
	return out
}
