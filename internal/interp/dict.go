package interp

// dictPayload is insertion-ordered: entries keeps declaration order
// for deterministic iteration, buckets maps key hashes to entry
// indexes for O(1) lookup. Deleted entries are tombstoned and
// squeezed out lazily.
type dictPayload struct {
	entries   []dictEntry
	buckets   map[uint64][]int
	deleted   int
	itercount int
}

type dictEntry struct {
	hash uint64
	key  ref
	val  ref
	dead bool
}

func newDictPayload() *dictPayload {
	return &dictPayload{buckets: make(map[uint64][]int)}
}

func (*dictPayload) kind() Kind { return KindDict }

func (d *dictPayload) trace(visit func(*ref)) {
	for i := range d.entries {
		if d.entries[i].dead {
			continue
		}
		visit(&d.entries[i].key)
		visit(&d.entries[i].val)
	}
}

func (d *dictPayload) len() int { return len(d.entries) - d.deleted }

// lookup finds the live entry index for a key, using eq for hash
// collisions. Hashing and equality need heap access, so the caller
// supplies both.
func (d *dictPayload) lookup(hash uint64, eq func(keyRef ref) (bool, error)) (int, error) {
	for _, idx := range d.buckets[hash] {
		e := &d.entries[idx]
		if e.dead || e.hash != hash {
			continue
		}
		ok, err := eq(e.key)
		if err != nil {
			return -1, err
		}
		if ok {
			return idx, nil
		}
	}
	return -1, nil
}

func (d *dictPayload) insert(hash uint64, key, val ref, eq func(ref) (bool, error)) error {
	idx, err := d.lookup(hash, eq)
	if err != nil {
		return err
	}
	if idx >= 0 {
		d.entries[idx].val = val
		return nil
	}
	d.entries = append(d.entries, dictEntry{hash: hash, key: key, val: val})
	d.buckets[hash] = append(d.buckets[hash], len(d.entries)-1)
	return nil
}

func (d *dictPayload) remove(hash uint64, eq func(ref) (bool, error)) (ref, bool, error) {
	idx, err := d.lookup(hash, eq)
	if err != nil {
		return nilRef, false, err
	}
	if idx < 0 {
		return nilRef, false, nil
	}
	val := d.entries[idx].val
	d.entries[idx].dead = true
	d.entries[idx].key = nilRef
	d.entries[idx].val = nilRef
	d.deleted++
	d.maybeSqueeze()
	return val, true, nil
}

func (d *dictPayload) clear() {
	d.entries = d.entries[:0]
	d.buckets = make(map[uint64][]int)
	d.deleted = 0
}

// maybeSqueeze rebuilds the entry array when tombstones dominate,
// preserving insertion order of the survivors.
func (d *dictPayload) maybeSqueeze() {
	if d.deleted < 8 || d.deleted*2 < len(d.entries) {
		return
	}
	live := d.entries[:0:0]
	for _, e := range d.entries {
		if !e.dead {
			live = append(live, e)
		}
	}
	d.entries = live
	d.deleted = 0
	d.buckets = make(map[uint64][]int, len(live))
	for i, e := range d.entries {
		d.buckets[e.hash] = append(d.buckets[e.hash], i)
	}
}

// each walks live entries in insertion order.
func (d *dictPayload) each(fn func(key, val ref) error) error {
	for i := range d.entries {
		if d.entries[i].dead {
			continue
		}
		if err := fn(d.entries[i].key, d.entries[i].val); err != nil {
			return err
		}
	}
	return nil
}
