package repository

import (
	"math"
	"math/rand/v2"

	"github.com/okian/hireloop/internal/domain/model"
)

// Treap-based per-job leaderboard.
//
// Ordering: composite score DESC, then rank position ASC, then candidate id
// ASC. "less" means ranks earlier, so in-order traversal yields the
// leaderboard from best to worst.

// scoreScale keeps six decimal places of the composite score.
const scoreScale = 1_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	switch {
	case math.IsNaN(x):
		return 0
	case x*scoreScale >= float64(math.MaxInt64):
		return scoreFP(math.MaxInt64)
	case x*scoreScale <= float64(math.MinInt64):
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

type key struct {
	score scoreFP
	rank  int
	id    string
}

func keyOf(r model.Ranking) key {
	return key{score: toFixedPoint(r.CompositeScore), rank: r.RankPosition, id: r.CandidateID}
}

// less returns true if a should appear before b on the leaderboard.
func less(a, b key) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.id < b.id
}

type node struct {
	key   key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, k key) *node {
	if n == nil {
		return &node{key: k, prio: rand.Uint64(), size: 1} //nolint:gosec // treap balance only
	}
	if less(k, n.key) {
		n.left = insert(n.left, k)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.key == k:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.key):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// collectTop appends up to limit rows in leaderboard order.
func collectTop(n *node, limit int, rows map[string]model.Ranking, out *[]model.Ranking) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTop(n.left, limit, rows, out)
	if len(*out) < limit {
		if r, ok := rows[n.key.id]; ok {
			*out = append(*out, r)
		}
	}
	if len(*out) < limit {
		collectTop(n.right, limit, rows, out)
	}
}

// leaderboard holds one job's ranking rows. Not safe for concurrent use.
type leaderboard struct {
	root *node
	rows map[string]model.Ranking
}

func newLeaderboard() *leaderboard {
	return &leaderboard{rows: make(map[string]model.Ranking)}
}

// upsert replaces the row for r.CandidateID.
func (b *leaderboard) upsert(r model.Ranking) {
	if old, ok := b.rows[r.CandidateID]; ok {
		b.root = deleteNode(b.root, keyOf(old))
	}
	b.rows[r.CandidateID] = r
	b.root = insert(b.root, keyOf(r))
}

// top returns up to limit rows; limit <= 0 returns all.
func (b *leaderboard) top(limit int) []model.Ranking {
	if limit <= 0 || limit > len(b.rows) {
		limit = len(b.rows)
	}
	out := make([]model.Ranking, 0, limit)
	collectTop(b.root, limit, b.rows, &out)
	return out
}

func (b *leaderboard) size() int { return nsize(b.root) }
