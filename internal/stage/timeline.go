package stage

import (
	"fmt"
	"time"
)

// Timeline maps a future stage to its planned date in ISO form
// (YYYY-MM-DD). A nil value means the date was cleared.
type Timeline map[Stage]*string

// UnknownStageError indicates a timeline entry named a stage outside the
// fixed sequence.
type UnknownStageError struct {
	Key string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", e.Key)
}

// NotEditableError indicates a timeline entry targeted the current or a
// past stage.
type NotEditableError struct {
	Key Stage
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("stage %q is not ahead of the current stage", e.Key)
}

// BadDateError indicates a timeline value was not a valid ISO date.
type BadDateError struct {
	Key   Stage
	Value string
}

func (e *BadDateError) Error() string {
	return fmt.Sprintf("invalid date %q for stage %q, expected YYYY-MM-DD", e.Value, e.Key)
}

// Initial builds the timeline seeded for a startup entering at current:
// every stage ahead of it mapped to no date yet.
func Initial(current Stage) Timeline {
	timeline := make(Timeline)
	for _, s := range After(current) {
		timeline[s] = nil
	}
	return timeline
}

// Merge applies updates on top of existing and returns the result,
// leaving both inputs untouched. Each updated key must be a known stage
// strictly ahead of current and carry either nil (clear) or a valid ISO
// date. The first offending entry aborts the merge.
func Merge(current Stage, existing Timeline, updates map[string]*string) (Timeline, error) {
	merged := make(Timeline, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = copyDate(v)
	}

	currentOrder := current.Order()

	for key, value := range updates {
		s := Stage(key)
		order := s.Order()
		if order < 0 {
			return nil, &UnknownStageError{Key: key}
		}
		if order <= currentOrder {
			return nil, &NotEditableError{Key: s}
		}
		if value != nil && *value != "" {
			if !validISODate(*value) {
				return nil, &BadDateError{Key: s, Value: *value}
			}
			merged[s] = copyDate(value)
			continue
		}

		merged[s] = nil
	}

	return merged, nil
}

// Prune drops every key at or before current, restoring the invariant
// after the current stage advances.
func Prune(current Stage, timeline Timeline) Timeline {
	currentOrder := current.Order()

	pruned := make(Timeline, len(timeline))
	for k, v := range timeline {
		if k.Order() > currentOrder {
			pruned[k] = copyDate(v)
		}
	}
	return pruned
}

func validISODate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func copyDate(v *string) *string {
	if v == nil {
		return nil
	}
	d := *v
	return &d
}
