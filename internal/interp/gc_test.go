package interp_test

import (
	"strings"
	"testing"
)

func TestCollectPreservesGlobals(t *testing.T) {
	ev := run(t, `
a = [1, 2, [3, 4]]
b = {"x": a, "y": (5, 6.5, "seven")}
c = a[2]
`)
	ev.Heap().Collect()

	if got := globalRepr(t, ev, "a"); got != "[1, 2, [3, 4]]" {
		t.Fatalf("a after collection = %s", got)
	}
	if got := globalRepr(t, ev, "b"); got != `{"x": [1, 2, [3, 4]], "y": (5, 6.5, "seven")}` {
		t.Fatalf("b after collection = %s", got)
	}
	// Sharing survives compaction: mutating through one alias is
	// visible through the other.
	exec(t, ev, "c.append(99)")
	if got := globalRepr(t, ev, "a"); got != "[1, 2, [3, 4, 99]]" {
		t.Fatalf("a after aliased mutation = %s", got)
	}
}

func TestCollectPreservesCycle(t *testing.T) {
	ev := run(t, `
l = [1]
l.append(l)
`)
	before := globalRepr(t, ev, "l")
	ev.Heap().Collect()
	after := globalRepr(t, ev, "l")
	if before != after || !strings.Contains(after, "[...]") {
		t.Fatalf("cycle repr changed across collection: %q -> %q", before, after)
	}
}

func TestCollectReclaimsGarbage(t *testing.T) {
	ev := run(t, `
keep = "survivor"
junk = [str(i) * 10 for i in range(500)]
junk = None
`)
	h := ev.Heap()
	h.Collect()
	grown := h.Size()
	// A second collection with no new allocations must not shrink
	// further: everything left is live.
	h.Collect()
	if h.Size() != grown {
		t.Fatalf("live set changed across idle collections: %d -> %d", grown, h.Size())
	}
	if grown > 400 {
		t.Fatalf("heap kept %d slots after dropping garbage", grown)
	}
	if got := globalRepr(t, ev, "keep"); got != `"survivor"` {
		t.Fatalf("keep = %s", got)
	}
}

func TestAutomaticCollection(t *testing.T) {
	ev := run(t, `
total = 0
for i in range(20000):
    t = [i, i + 1, str(i)]
    total = total + len(t)
`)
	if ev.Heap().Collections() == 0 {
		t.Fatal("no collection triggered by allocation pressure")
	}
	if got := globalRepr(t, ev, "total"); got != "60000" {
		t.Fatalf("total = %s", got)
	}
}

func TestSharedCellAcrossCollections(t *testing.T) {
	// Two closures over one cell: each call copies the captured refs
	// into its frame, and collections between calls must keep both
	// closures pointing at the same list.
	ev := run(t, `
def pair():
    n = [0]
    def inc():
        n.append(len(n))
        return n
    def get():
        return n
    return (inc, get)

p = pair()
`)
	ev.Heap().Collect()
	exec(t, ev, "a = p[0]()")
	ev.Heap().Collect()
	exec(t, ev, "b = p[1]()")
	if got := globalRepr(t, ev, "b"); got != "[0, 1]" {
		t.Fatalf("closures diverged after collection: b = %s", got)
	}
	exec(t, ev, "p[0]()")
	if got := globalRepr(t, ev, "b"); got != "[0, 1, 2]" {
		t.Fatalf("cell sharing lost: b = %s", got)
	}
}

func TestFunctionsSurviveCollection(t *testing.T) {
	ev := run(t, `
def make(n):
    acc = [n]
    def add(m):
        acc.append(m)
        return acc
    return add

f = make(1)
`)
	ev.Heap().Collect()
	exec(t, ev, "out = f(2)")
	if got := globalRepr(t, ev, "out"); got != "[1, 2]" {
		t.Fatalf("closure state after collection = %s", got)
	}
}
