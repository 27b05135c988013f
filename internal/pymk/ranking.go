package pymk

// Entry is a ranked (candidate, score) pair.
type Entry struct {
	ID    uint64
	Score int
}

// less orders entries by score, then id, both ascending.
func (a Entry) less(b Entry) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID < b.ID
}

type rankNode struct {
	e           Entry
	height      int
	left, right *rankNode
}

func height(n *rankNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *rankNode) fix() { n.height = max(height(n.left), height(n.right)) + 1 }

func (n *rankNode) balance() int { return height(n.left) - height(n.right) }

// RankingTree is an AVL tree over (score, id) used to pull the top-K
// candidates of one suggestion request. The composite key is the only
// identity: inserting the same id with two different scores stores two
// entries, so each id must be inserted at most once. The zero value is
// an empty tree ready to use.
type RankingTree struct {
	root *rankNode
	size int
}

func (t *RankingTree) Len() int { return t.size }

// Insert adds (id, score). An exact duplicate pair is ignored.
func (t *RankingTree) Insert(id uint64, score int) {
	var added bool
	t.root = insert(t.root, Entry{ID: id, Score: score}, &added)
	if added {
		t.size++
	}
}

func insert(n *rankNode, e Entry, added *bool) *rankNode {
	if n == nil {
		*added = true
		return &rankNode{e: e, height: 1}
	}
	switch {
	case e.less(n.e):
		n.left = insert(n.left, e, added)
	case n.e.less(e):
		n.right = insert(n.right, e, added)
	default:
		return n
	}
	n.fix()

	bf := n.balance()
	switch {
	case bf > 1 && e.less(n.left.e): // left-left
		return rotateRight(n)
	case bf < -1 && n.right.e.less(e): // right-right
		return rotateLeft(n)
	case bf > 1: // left-right
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1: // right-left
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

func rotateRight(y *rankNode) *rankNode {
	x := y.left
	y.left = x.right
	x.right = y
	y.fix()
	x.fix()
	return x
}

func rotateLeft(x *rankNode) *rankNode {
	y := x.right
	x.right = y.left
	y.left = x
	x.fix()
	y.fix()
	return y
}

// TopK returns up to k ids by descending score. Ties come out by
// descending id, since the walk visits the right subtree first.
func (t *RankingTree) TopK(k int) []uint64 {
	entries := t.TopEntries(k)
	out := make([]uint64, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

// TopEntries is TopK with scores attached.
func (t *RankingTree) TopEntries(k int) []Entry {
	if k <= 0 {
		return []Entry{}
	}
	out := make([]Entry, 0, min(k, t.size))
	descend(t.root, k, &out)
	return out
}

// descend is a reverse in-order walk that stops once k entries are collected.
func descend(n *rankNode, k int, out *[]Entry) {
	if n == nil || len(*out) >= k {
		return
	}
	descend(n.right, k, out)
	if len(*out) < k {
		*out = append(*out, n.e)
	}
	descend(n.left, k, out)
}
