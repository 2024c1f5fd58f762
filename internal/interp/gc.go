package interp

// Collect runs a mark/compact pass: live payloads are moved into a
// fresh arena in discovery order and every surviving ref — in roots
// and in moved payloads — is rewritten to its new slot. Callers must
// be at a safe point: any handle not reachable from a registered
// root is invalid afterwards.
//
// The singleton slots (None/False/True) are re-seeded first so their
// refs stay fixed across collections.
func (h *Heap) Collect() {
	old := h.cells
	forward := make([]ref, len(old))
	fresh := make([]payload, 0, len(old)/2+4)
	fresh = append(fresh, nil)
	for r := noneRef; r <= trueRef; r++ {
		fresh = append(fresh, old[r])
		forward[r] = r
	}

	move := func(pr *ref) {
		r := *pr
		if r == nilRef {
			return
		}
		if f := forward[r]; f != nilRef {
			*pr = f
			return
		}
		fresh = append(fresh, old[r])
		nf := ref(len(fresh) - 1)
		forward[r] = nf
		*pr = nf
	}

	for _, root := range h.roots {
		root(move)
	}

	// Cheney scan: payloads moved above may own refs that still point
	// into the old arena; each moved payload is scanned exactly once.
	for scan := int(trueRef) + 1; scan < len(fresh); scan++ {
		fresh[scan].trace(move)
	}

	h.cells = fresh
	h.gen++
	h.collections++
	h.allocVolume = 0

	// Intern tables hold old-arena refs and are not roots; drop them
	// and re-intern on demand.
	h.strings = make(map[string]ref)
	h.smallInts = make(map[int64]ref)

	// Grow the trigger so a heap that stays large does not collect on
	// every statement.
	if t := len(fresh) * 2; t > h.gcThreshold {
		h.gcThreshold = t
	}
}
