package enum

import "testing"

func TestPnlStatusTransitions(t *testing.T) {
	cases := []struct {
		from    PnlStatus
		to      PnlStatus
		allowed bool
	}{
		{PnlStatusDraft, PnlStatusInReview, true},
		{PnlStatusDraft, PnlStatusApproved, true},
		{PnlStatusDraft, PnlStatusRejected, true},
		{PnlStatusDraft, PnlStatusArchived, true},
		{PnlStatusInReview, PnlStatusApproved, true},
		{PnlStatusInReview, PnlStatusRejected, true},
		{PnlStatusInReview, PnlStatusArchived, true},
		{PnlStatusInReview, PnlStatusDraft, false},
		{PnlStatusRejected, PnlStatusArchived, true},
		{PnlStatusRejected, PnlStatusInReview, false},
		{PnlStatusRejected, PnlStatusApproved, false},
		{PnlStatusApproved, PnlStatusArchived, false},
		{PnlStatusApproved, PnlStatusDraft, false},
		{PnlStatusArchived, PnlStatusDraft, false},
		{PnlStatusArchived, PnlStatusApproved, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestPnlStatusTerminal(t *testing.T) {
	if !PnlStatusApproved.IsTerminal() {
		t.Error("approved must be terminal")
	}
	if !PnlStatusArchived.IsTerminal() {
		t.Error("archived must be terminal")
	}
	if PnlStatusDraft.IsTerminal() || PnlStatusInReview.IsTerminal() || PnlStatusRejected.IsTerminal() {
		t.Error("draft, in_review and rejected must not be terminal")
	}
}

func TestPnlStatusJSONRoundTrip(t *testing.T) {
	for _, s := range []PnlStatus{
		PnlStatusDraft, PnlStatusInReview, PnlStatusApproved,
		PnlStatusRejected, PnlStatusArchived,
	} {
		data, err := s.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal %v: %v", s, err)
		}

		var parsed PnlStatus
		if err := parsed.UnmarshalJSON(data); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if parsed != s {
			t.Fatalf("round trip mismatch: %v became %v", s, parsed)
		}
	}
}
