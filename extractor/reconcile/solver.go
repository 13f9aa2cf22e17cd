// Package reconcile assigns unlabeled numbers to named roles by searching
// every permutation for the ones that satisfy a linear invariant.
package reconcile

import (
	"fmt"
	"slices"

	"github.com/aqlanhadi/stmtparse/extractor/common"
)

// MaxGroup bounds the exhaustive search (8! candidates).
const MaxGroup = 8

// Candidate is one assignment of group values to roles. Values[i] is the
// value of role i and Order[i] the group index it was taken from.
type Candidate struct {
	Values []int64
	Order  []int
}

// Displacement counts roles not taken from their own group position.
func (c Candidate) Displacement() int64 {
	var n int64
	for role, idx := range c.Order {
		if role != idx {
			n++
		}
	}
	return n
}

// Problem describes one invariant over len(Roles) values.
type Problem struct {
	Roles []string
	// Residual is zero when the values satisfy the invariant exactly.
	Residual  func(v []int64) int64
	Tolerance int64
	// Penalty scores a surviving candidate; lower wins. group is the input
	// in document order.
	Penalty func(c Candidate, group []int64) int64
	// TieBreak returns a key compared lexicographically after the penalty.
	TieBreak func(v []int64) []int64
}

// Solve searches all k! assignments of group to the roles.
func (p Problem) Solve(group []int64) (Candidate, error) {
	return p.solve(group, -1, -1)
}

// SolveAnchored pins role to group[index] and searches the (k-1)!
// assignments of the rest.
func (p Problem) SolveAnchored(group []int64, role, index int) (Candidate, error) {
	if role < 0 || role >= len(p.Roles) || index < 0 || index >= len(group) {
		return Candidate{}, common.ReconciliationError(fmt.Sprintf("anchor %d->%d out of range", role, index))
	}
	return p.solve(group, role, index)
}

type scored struct {
	c       Candidate
	penalty int64
	key     []int64
}

func (p Problem) solve(group []int64, anchorRole, anchorIndex int) (Candidate, error) {
	k := len(p.Roles)
	if len(group) != k {
		return Candidate{}, common.ReconciliationError(fmt.Sprintf("need %d numbers, got %d", k, len(group)))
	}
	if k == 0 || k > MaxGroup {
		return Candidate{}, common.ReconciliationError(fmt.Sprintf("group size %d outside 1..%d", k, MaxGroup))
	}

	var best *scored
	permute(k, func(order []int) {
		if anchorRole >= 0 && order[anchorRole] != anchorIndex {
			return
		}
		values := make([]int64, k)
		for role, idx := range order {
			values[role] = group[idx]
		}
		if abs(p.Residual(values)) > p.Tolerance {
			return
		}
		c := Candidate{Values: values, Order: slices.Clone(order)}
		s := scored{c: c}
		if p.Penalty != nil {
			s.penalty = p.Penalty(c, group)
		}
		if p.TieBreak != nil {
			s.key = p.TieBreak(values)
		}
		// strict comparison keeps the earliest candidate on full ties
		if best == nil || less(s, *best) {
			best = &s
		}
	})

	if best == nil {
		return Candidate{}, common.ReconciliationError(fmt.Sprintf("no assignment of %v satisfies the invariant", group))
	}
	return best.c, nil
}

func less(a, b scored) bool {
	if a.penalty != b.penalty {
		return a.penalty < b.penalty
	}
	return slices.Compare(a.key, b.key) < 0
}

// permute calls fn with every permutation of 0..k-1 in lexicographic order.
// fn must not retain the slice.
func permute(k int, fn func([]int)) {
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	for {
		fn(order)
		i := k - 2
		for i >= 0 && order[i] >= order[i+1] {
			i--
		}
		if i < 0 {
			return
		}
		j := k - 1
		for order[j] <= order[i] {
			j--
		}
		order[i], order[j] = order[j], order[i]
		slices.Reverse(order[i+1:])
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func minMax(group []int64) (lo, hi int64) {
	lo, hi = group[0], group[0]
	for _, v := range group[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func hasZero(group []int64) bool {
	return slices.Contains(group, 0)
}
