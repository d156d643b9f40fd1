package moderation

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     Status
		to       Status
		expected bool
	}{
		{name: "pending to approved", from: StatusPending, to: StatusApproved, expected: true},
		{name: "pending to rejected", from: StatusPending, to: StatusRejected, expected: true},
		{name: "approved to held", from: StatusApproved, to: StatusHeld, expected: true},
		{name: "held back to approved", from: StatusHeld, to: StatusApproved, expected: true},
		{name: "pending to held invalid", from: StatusPending, to: StatusHeld, expected: false},
		{name: "approved to rejected invalid", from: StatusApproved, to: StatusRejected, expected: false},
		{name: "rejected is terminal", from: StatusRejected, to: StatusPending, expected: false},
		{name: "rejected to approved invalid", from: StatusRejected, to: StatusApproved, expected: false},
		{name: "held to rejected invalid", from: StatusHeld, to: StatusRejected, expected: false},
		{name: "unknown status invalid", from: Status("archived"), to: StatusApproved, expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}

func TestApprove(t *testing.T) {
	testCases := []struct {
		name      string
		from      Status
		expect    Status
		expectErr error
	}{
		{name: "pending approves", from: StatusPending, expect: StatusApproved},
		{name: "approved stays put", from: StatusApproved, expect: StatusApproved, expectErr: ErrInvalidTransition},
		{name: "rejected stays put", from: StatusRejected, expect: StatusRejected, expectErr: ErrInvalidTransition},
		{name: "held stays put", from: StatusHeld, expect: StatusHeld, expectErr: ErrInvalidTransition},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := Approve("startup", tc.from)
			if err != tc.expectErr {
				t.Fatalf("Approve(%s) error = %v, expected %v", tc.from, err, tc.expectErr)
			}
			if got != tc.expect {
				t.Fatalf("Approve(%s) = %s, expected %s", tc.from, got, tc.expect)
			}
		})
	}
}

func TestReject(t *testing.T) {
	t.Run("pending with reason", func(t *testing.T) {
		got, err := Reject("vacancy", StatusPending, "incomplete description")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != StatusRejected {
			t.Fatalf("got %s, expected %s", got, StatusRejected)
		}
	})

	t.Run("pending without reason", func(t *testing.T) {
		if _, err := Reject("vacancy", StatusPending, ""); err != ErrEmptyReason {
			t.Fatalf("expected ErrEmptyReason, got %v", err)
		}
	})

	t.Run("non-pending", func(t *testing.T) {
		if _, err := Reject("vacancy", StatusApproved, "reason"); err != ErrInvalidTransition {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestToggleHold(t *testing.T) {
	testCases := []struct {
		name      string
		from      Status
		expect    Status
		expectErr error
	}{
		{name: "approved becomes held", from: StatusApproved, expect: StatusHeld},
		{name: "held becomes approved", from: StatusHeld, expect: StatusApproved},
		{name: "pending cannot be held", from: StatusPending, expect: StatusPending, expectErr: ErrInvalidTransition},
		{name: "rejected cannot be held", from: StatusRejected, expect: StatusRejected, expectErr: ErrInvalidTransition},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToggleHold("startup", tc.from)
			if err != tc.expectErr {
				t.Fatalf("ToggleHold(%s) error = %v, expected %v", tc.from, err, tc.expectErr)
			}
			if got != tc.expect {
				t.Fatalf("ToggleHold(%s) = %s, expected %s", tc.from, got, tc.expect)
			}
		})
	}
}

func TestVisibility(t *testing.T) {
	if !StatusApproved.VisibleTo(false, false) {
		t.Error("approved entities must be visible to everyone")
	}
	if StatusPending.VisibleTo(false, false) {
		t.Error("pending entities must be hidden from strangers")
	}
	if !StatusPending.VisibleTo(false, true) {
		t.Error("pending entities must be visible to their creator")
	}
	if !StatusHeld.VisibleTo(true, false) {
		t.Error("held entities must be visible to admins")
	}
	if StatusHeld.PubliclyListed() {
		t.Error("held entities must not appear in the public listing")
	}
	if !StatusApproved.PubliclyListed() {
		t.Error("approved entities must appear in the public listing")
	}
}
