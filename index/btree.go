// Package index implements the ordered key→row-id structure backing
// every CREATE INDEX and implicit PRIMARY KEY/UNIQUE index: a B-tree
// with a small fixed fan-out, guaranteeing O(log n) insert, remove,
// point lookup and range lookup, plus in-order traversal.
package index

import (
	"sort"

	"github.com/latticedb/lattice/value"
)

// maxKeys is the maximum number of keys per node before it splits. Four
// keeps nodes small and splits frequent; the balancing discipline only
// requires the asymptotic guarantee, not a particular fan-out.
const maxKeys = 4

// entry pairs an indexed key with the set of row-ids holding it. Only a
// non-unique index ever has more than one row-id per key.
type entry struct {
	key    value.Value
	rowIDs []int64
}

type node struct {
	leaf     bool
	entries  []*entry
	children []*node // len(children) == len(entries)+1 when !leaf
}

// Tree is a B-tree ordered index over a single column.
type Tree struct {
	root   *node
	unique bool
}

// New creates an empty index. unique enforces single-row-id-per-key on
// Insert, matching a PRIMARY KEY or UNIQUE column's index.
func New(unique bool) *Tree {
	return &Tree{root: &node{leaf: true}, unique: unique}
}

// ErrDuplicateKey is returned by Insert on a unique index when the key
// is already present.
type ErrDuplicateKey struct {
	Key value.Value
}

func (e *ErrDuplicateKey) Error() string {
	return "duplicate key " + e.Key.String() + " in unique index"
}

func compare(a, b value.Value) int {
	c, err := value.Compare(a, b)
	if err != nil {
		panic(err)
	}
	return c
}

// search returns the position of key in n.entries, or the insertion
// point / child index to descend into when not found.
func (n *node) search(key value.Value) (idx int, found bool) {
	idx = sort.Search(len(n.entries), func(i int) bool {
		return compare(n.entries[i].key, key) >= 0
	})
	found = idx < len(n.entries) && compare(n.entries[idx].key, key) == 0
	return idx, found
}

func (n *node) findEntry(key value.Value) *entry {
	idx, found := n.search(key)
	if found {
		return n.entries[idx]
	}
	if n.leaf {
		return nil
	}
	return n.children[idx].findEntry(key)
}

// Insert adds a row-id under key. NULL keys are silently ignored: a
// NULL column value is never indexed. A unique index rejects a second
// row-id for a key already present. An entry left behind by Remove
// with no row-ids remaining is treated as absent, not a duplicate.
func (t *Tree) Insert(key value.Value, rowID int64) error {
	if key.IsNull() {
		return nil
	}
	if e := t.root.findEntry(key); e != nil {
		if len(e.rowIDs) > 0 && t.unique {
			return &ErrDuplicateKey{Key: key}
		}
		e.rowIDs = append(e.rowIDs, rowID)
		return nil
	}

	if len(t.root.entries) == maxKeys {
		oldRoot := t.root
		newRoot := &node{leaf: false, children: []*node{oldRoot}}
		newRoot.splitChild(0)
		t.root = newRoot
	}
	t.root.insertNonFull(key, rowID)
	return nil
}

func (n *node) insertNonFull(key value.Value, rowID int64) {
	idx, _ := n.search(key)
	if n.leaf {
		n.entries = append(n.entries, nil)
		copy(n.entries[idx+1:], n.entries[idx:])
		n.entries[idx] = &entry{key: key, rowIDs: []int64{rowID}}
		return
	}
	if len(n.children[idx].entries) == maxKeys {
		n.splitChild(idx)
		if compare(key, n.entries[idx].key) > 0 {
			idx++
		}
	}
	n.children[idx].insertNonFull(key, rowID)
}

// splitChild splits the full child at n.children[i] into two nodes,
// promoting its median entry up into n.
func (n *node) splitChild(i int) {
	child := n.children[i]
	mid := len(child.entries) / 2
	median := child.entries[mid]

	right := &node{leaf: child.leaf}
	right.entries = append(right.entries, child.entries[mid+1:]...)
	if !child.leaf {
		right.children = append(right.children, child.children[mid+1:]...)
		child.children = child.children[:mid+1]
	}
	child.entries = child.entries[:mid]

	n.entries = append(n.entries, nil)
	copy(n.entries[i+1:], n.entries[i:])
	n.entries[i] = median

	n.children = append(n.children, nil)
	copy(n.children[i+2:], n.children[i+1:])
	n.children[i+1] = right
}

// Remove deletes one occurrence of rowID under key. It is a no-op if
// the key or row-id isn't present. The entry itself is left in the
// tree even once its row-ids empty out — removing an entry node
// requires the full B-tree merge/borrow deletion algorithm, which
// isn't needed here: PointLookup/RangeLookup already skip zero-row-id
// entries, and Insert treats one as absent rather than a duplicate.
// Underflowing nodes are otherwise left as-is; lookups stay correct
// because they only rely on sorted order, not on a minimum fill factor.
func (t *Tree) Remove(key value.Value, rowID int64) {
	if key.IsNull() {
		return
	}
	e := t.root.findEntry(key)
	if e == nil {
		return
	}
	for i, id := range e.rowIDs {
		if id == rowID {
			e.rowIDs = append(e.rowIDs[:i], e.rowIDs[i+1:]...)
			return
		}
	}
}

// PointLookup returns every row-id stored under key, or nil if absent.
func (t *Tree) PointLookup(key value.Value) []int64 {
	if key.IsNull() {
		return nil
	}
	e := t.root.findEntry(key)
	if e == nil || len(e.rowIDs) == 0 {
		return nil
	}
	return append([]int64(nil), e.rowIDs...)
}

// RangeLookup returns row-ids for every key in [lo, hi] (bounds
// inclusive/exclusive per loInclusive/hiInclusive), in ascending key
// order. A nil lo or hi means unbounded on that side.
func (t *Tree) RangeLookup(lo, hi *value.Value, loInclusive, hiInclusive bool) []int64 {
	var out []int64
	t.root.walkRange(lo, hi, loInclusive, hiInclusive, &out)
	return out
}

// walkRange visits only the entries within [lo, hi] and the children
// that can possibly hold keys in that span, so a range lookup costs
// O(log n + k) rather than a full scan of every entry.
func (n *node) walkRange(lo, hi *value.Value, loInclusive, hiInclusive bool, out *[]int64) {
	start := 0
	if lo != nil {
		start = sort.Search(len(n.entries), func(i int) bool {
			c := compare(n.entries[i].key, *lo)
			return c > 0 || (c == 0 && loInclusive)
		})
	}
	end := len(n.entries)
	if hi != nil {
		end = sort.Search(len(n.entries), func(i int) bool {
			c := compare(n.entries[i].key, *hi)
			return c > 0 || (c == 0 && !hiInclusive)
		})
	}

	if !n.leaf {
		n.children[start].walkRange(lo, hi, loInclusive, hiInclusive, out)
	}
	for i := start; i < end; i++ {
		if e := n.entries[i]; len(e.rowIDs) > 0 {
			*out = append(*out, e.rowIDs...)
		}
		if !n.leaf {
			n.children[i+1].walkRange(lo, hi, loInclusive, hiInclusive, out)
		}
	}
}

// Entry is one (key, row-ids) pair surfaced by in-order traversal and
// by introspection's index size reporting.
type Entry struct {
	Key    value.Value
	RowIDs []int64
}

// InOrder returns every entry in ascending key order.
func (t *Tree) InOrder() []Entry {
	var out []Entry
	t.root.walkInOrder(&out)
	return out
}

func (n *node) walkInOrder(out *[]Entry) {
	for i, e := range n.entries {
		if !n.leaf {
			n.children[i].walkInOrder(out)
		}
		*out = append(*out, Entry{Key: e.key, RowIDs: append([]int64(nil), e.rowIDs...)})
	}
	if !n.leaf {
		n.children[len(n.entries)].walkInOrder(out)
	}
}

// Size returns the number of distinct keys in the index.
func (t *Tree) Size() int {
	n := 0
	for _, e := range t.InOrder() {
		if len(e.RowIDs) > 0 {
			n++
		}
	}
	return n
}

// Unique reports whether the index rejects duplicate keys.
func (t *Tree) Unique() bool { return t.unique }
