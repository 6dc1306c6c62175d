package propagator

// PrefixSumTree is a segment tree over a fixed vector of N nonnegative leaf
// weights. Each internal node holds the sum of its children; the root holds
// the total. It supports point update, bulk update, total, and an
// inverse-CDF lookup (Choose), all in O(log N) except BulkUpdate which
// repairs ancestors once in O(N).
//
// It is the backbone of FixedDirectMethod's O(log N) clock selection.
type PrefixSumTree struct {
	n    int
	size int       // next power of two >= n (>= 1); leaves live at [size, 2*size).
	tree []float64 // 1-indexed.
}

// NewPrefixSumTree allocates a tree holding n nonnegative leaf weights, all
// zero. n may be zero (Total and Choose then behave as an empty tree).
//
// The tree is padded with zero-weight leaves up to the next power of two so
// every internal node's left and right children represent contiguous,
// correctly-ordered leaf ranges — required for Choose's left-to-right
// descent. Padding leaves are never updated and never selected for any u
// inside [0, Total()).
func NewPrefixSumTree(n int) *PrefixSumTree {
	assertf(n >= 0, "tree: negative size %d", n)
	size := 1
	for size < n {
		size *= 2
	}
	return &PrefixSumTree{n: n, size: size, tree: make([]float64, 2*size)}
}

// Len returns the number of leaves.
func (t *PrefixSumTree) Len() int { return t.n }

// Update sets leaf i to w and repairs all ancestors. w must be nonnegative.
func (t *PrefixSumTree) Update(i int, w float64) {
	assertf(i >= 0 && i < t.n, "tree: index %d out of range [0, %d)", i, t.n)
	assertf(w >= 0, "tree: negative weight %v", w)
	i += t.size
	t.tree[i] = w
	for i > 1 {
		i /= 2
		t.tree[i] = t.tree[2*i] + t.tree[2*i+1]
	}
}

// IndexWeight pairs a leaf index with the weight to assign it, for
// BulkUpdate.
type IndexWeight struct {
	Index  int
	Weight float64
}

// BulkUpdate is the batch form of Update: semantically equivalent to calling
// Update for every entry, but repairs ancestors once instead of once per
// entry.
func (t *PrefixSumTree) BulkUpdate(updates []IndexWeight) {
	for _, u := range updates {
		assertf(u.Index >= 0 && u.Index < t.n, "tree: index %d out of range [0, %d)", u.Index, t.n)
		assertf(u.Weight >= 0, "tree: negative weight %v", u.Weight)
		t.tree[u.Index+t.size] = u.Weight
	}
	for i := t.size - 1; i >= 1; i-- {
		t.tree[i] = t.tree[2*i] + t.tree[2*i+1]
	}
}

// Total returns the root value: the sum of all leaf weights.
func (t *PrefixSumTree) Total() float64 {
	if t.n == 0 {
		return 0
	}
	return t.tree[1]
}

// Choose returns the unique leaf i such that the prefix sum of leaves
// [0, i) is <= u < prefix sum of leaves [0, i+1), walking down from the
// root in O(log N). Ties among zero-weight leaves are skipped left to
// right. Undefined if Total() == 0 or u is outside [0, Total()].
func (t *PrefixSumTree) Choose(u float64) (index int, weight float64) {
	assertf(t.n > 0, "tree: choose on empty tree")
	i := 1
	for i < t.size {
		left := 2 * i
		if u < t.tree[left] {
			i = left
		} else {
			u -= t.tree[left]
			i = left + 1
		}
	}
	return i - t.size, t.tree[i]
}
