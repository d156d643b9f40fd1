// Package stage defines the ordered development stages a startup moves
// through and the planned-date timeline attached to the stages ahead.
package stage

// Stage represents one step of the fixed development sequence.
type Stage string

const (
	StageIdea        Stage = "idea"
	StageMVP         Stage = "mvp"
	StagePMF         Stage = "pmf"
	StageScaling     Stage = "scaling"
	StageEstablished Stage = "established"
)

// ordered lists every stage in progression order.
var ordered = []Stage{
	StageIdea,
	StageMVP,
	StagePMF,
	StageScaling,
	StageEstablished,
}

// Order returns the ordinal position of s in the progression, or -1 for
// an unknown stage.
func (s Stage) Order() int {
	for i, stage := range ordered {
		if stage == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s.Order() >= 0
}

// All returns the stages in progression order.
func All() []Stage {
	out := make([]Stage, len(ordered))
	copy(out, ordered)
	return out
}

// After returns the stages strictly after current, i.e. the set of keys
// a startup at that stage may plan dates for.
func After(current Stage) []Stage {
	order := current.Order()
	if order < 0 {
		return nil
	}

	out := make([]Stage, 0, len(ordered)-order-1)
	for i := order + 1; i < len(ordered); i++ {
		out = append(out, ordered[i])
	}
	return out
}
