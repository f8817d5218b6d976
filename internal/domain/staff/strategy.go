// Package staff ranks the staff eligible for a set of menus when the
// customer has no preference.
package staff

import "sort"

// MaxPriority bounds StaffConfig.Priority; ranking clamps stored values
// into [0, MaxPriority].
const MaxPriority = 100

func clampPriority(p int) int {
	switch {
	case p < 0:
		return 0
	case p > MaxPriority:
		return MaxPriority
	}
	return p
}

type Candidate struct {
	ID       uint
	Name     string
	Priority int
}

// Exclusions maps a menu id to the staff ids unable to perform it.
type Exclusions map[uint][]uint

// Excluded returns the set of staff excluded for any of menuIDs.
func (e Exclusions) Excluded(menuIDs []uint) map[uint]struct{} {
	out := make(map[uint]struct{})
	for _, menuID := range menuIDs {
		for _, staffID := range e[menuID] {
			out[staffID] = struct{}{}
		}
	}
	return out
}

// Rank drops staff excluded for menuIDs and orders the rest by priority
// descending, then by id ascending.
func Rank(all []Candidate, exclusions Exclusions, menuIDs []uint) []Candidate {
	excluded := exclusions.Excluded(menuIDs)

	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		if _, skip := excluded[c.ID]; skip {
			continue
		}
		c.Priority = clampPriority(c.Priority)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CanPerform reports whether staffID is not excluded for any of menuIDs.
func CanPerform(staffID uint, exclusions Exclusions, menuIDs []uint) bool {
	_, excluded := exclusions.Excluded(menuIDs)[staffID]
	return !excluded
}
