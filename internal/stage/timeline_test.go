package stage

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestOrderAndAfter(t *testing.T) {
	if StageIdea.Order() != 0 || StageEstablished.Order() != 4 {
		t.Fatalf("unexpected stage ordering: idea=%d established=%d", StageIdea.Order(), StageEstablished.Order())
	}
	if Stage("unicorn").Order() != -1 {
		t.Fatal("unknown stage must have order -1")
	}

	future := After(StagePMF)
	if len(future) != 2 || future[0] != StageScaling || future[1] != StageEstablished {
		t.Fatalf("After(pmf) = %v", future)
	}
	if len(After(StageEstablished)) != 0 {
		t.Fatal("final stage must have no future stages")
	}
}

func TestInitial(t *testing.T) {
	timeline := Initial(StageIdea)
	if len(timeline) != 4 {
		t.Fatalf("Initial(idea) has %d keys, expected 4", len(timeline))
	}
	if date, ok := timeline[StageMVP]; !ok || date != nil {
		t.Fatal("future stages must be pre-seeded with no date")
	}
	if _, ok := timeline[StageIdea]; ok {
		t.Fatal("the current stage must not appear in the timeline")
	}
}

func TestMerge(t *testing.T) {
	existing := Timeline{StageMVP: strPtr("2025-03-01"), StagePMF: nil}

	testCases := []struct {
		name    string
		current Stage
		updates map[string]*string
		check   func(t *testing.T, merged Timeline, err error)
	}{
		{
			name:    "set a future date",
			current: StageIdea,
			updates: map[string]*string{"mvp": strPtr("2025-06-01")},
			check: func(t *testing.T, merged Timeline, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if merged[StageMVP] == nil || *merged[StageMVP] != "2025-06-01" {
					t.Fatalf("mvp date not merged: %v", merged[StageMVP])
				}
				if merged[StagePMF] != nil {
					t.Fatal("untouched keys must survive the merge")
				}
			},
		},
		{
			name:    "clear with nil",
			current: StageIdea,
			updates: map[string]*string{"mvp": nil},
			check: func(t *testing.T, merged Timeline, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if date, ok := merged[StageMVP]; !ok || date != nil {
					t.Fatal("nil must clear the planned date but keep the key")
				}
			},
		},
		{
			name:    "empty string clears too",
			current: StageIdea,
			updates: map[string]*string{"scaling": strPtr("")},
			check: func(t *testing.T, merged Timeline, err error) {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if merged[StageScaling] != nil {
					t.Fatal("empty string must clear the planned date")
				}
			},
		},
		{
			name:    "current stage is not editable",
			current: StageIdea,
			updates: map[string]*string{"idea": strPtr("2025-06-01")},
			check: func(t *testing.T, _ Timeline, err error) {
				var notEditable *NotEditableError
				if !errors.As(err, &notEditable) {
					t.Fatalf("expected NotEditableError, got %v", err)
				}
				if notEditable.Key != StageIdea {
					t.Fatalf("error names %q, expected idea", notEditable.Key)
				}
			},
		},
		{
			name:    "past stage is not editable",
			current: StagePMF,
			updates: map[string]*string{"mvp": strPtr("2025-06-01")},
			check: func(t *testing.T, _ Timeline, err error) {
				var notEditable *NotEditableError
				if !errors.As(err, &notEditable) {
					t.Fatalf("expected NotEditableError, got %v", err)
				}
			},
		},
		{
			name:    "unknown stage",
			current: StageIdea,
			updates: map[string]*string{"unicorn": strPtr("2025-06-01")},
			check: func(t *testing.T, _ Timeline, err error) {
				var unknown *UnknownStageError
				if !errors.As(err, &unknown) {
					t.Fatalf("expected UnknownStageError, got %v", err)
				}
			},
		},
		{
			name:    "bad date format",
			current: StageIdea,
			updates: map[string]*string{"mvp": strPtr("06/01/2025")},
			check: func(t *testing.T, _ Timeline, err error) {
				var badDate *BadDateError
				if !errors.As(err, &badDate) {
					t.Fatalf("expected BadDateError, got %v", err)
				}
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			merged, err := Merge(tc.current, existing, tc.updates)
			tc.check(t, merged, err)
		})
	}

	if *existing[StageMVP] != "2025-03-01" {
		t.Fatal("Merge must not mutate the existing timeline")
	}
}

func TestPrune(t *testing.T) {
	timeline := Timeline{
		StageMVP:     strPtr("2025-03-01"),
		StagePMF:     strPtr("2025-09-01"),
		StageScaling: nil,
	}

	pruned := Prune(StagePMF, timeline)
	if _, ok := pruned[StageMVP]; ok {
		t.Fatal("past stages must be pruned")
	}
	if _, ok := pruned[StagePMF]; ok {
		t.Fatal("the current stage must be pruned")
	}
	if _, ok := pruned[StageScaling]; !ok {
		t.Fatal("future stages must survive pruning")
	}
}
