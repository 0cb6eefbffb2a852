package domain

import "testing"

func TestLoadStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from LoadStatus
		to   LoadStatus
		want bool
	}{
		{LoadStatusPosted, LoadStatusAssigned, true},
		{LoadStatusPosted, LoadStatusCancelled, true},
		{LoadStatusPosted, LoadStatusInTransit, false},
		{LoadStatusPosted, LoadStatusDelivered, false},
		{LoadStatusPosted, LoadStatusPosted, false},
		{LoadStatusAssigned, LoadStatusInTransit, true},
		{LoadStatusAssigned, LoadStatusCancelled, true},
		{LoadStatusAssigned, LoadStatusDelivered, false},
		{LoadStatusAssigned, LoadStatusPosted, false},
		{LoadStatusInTransit, LoadStatusDelivered, true},
		{LoadStatusInTransit, LoadStatusCancelled, true},
		{LoadStatusInTransit, LoadStatusAssigned, false},
		{LoadStatusDelivered, LoadStatusCancelled, false},
		{LoadStatusDelivered, LoadStatusPosted, false},
		{LoadStatusCancelled, LoadStatusPosted, false},
		{LoadStatusCancelled, LoadStatusAssigned, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestLoadStatus_Terminal(t *testing.T) {
	t.Parallel()

	for _, s := range []LoadStatus{LoadStatusDelivered, LoadStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []LoadStatus{LoadStatusPosted, LoadStatusAssigned, LoadStatusInTransit} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseLoadStatus(t *testing.T) {
	t.Parallel()

	if s, ok := ParseLoadStatus("in_transit"); !ok || s != LoadStatusInTransit {
		t.Fatalf("ParseLoadStatus(in_transit) = %v, %v", s, ok)
	}
	if _, ok := ParseLoadStatus("pending"); ok {
		t.Fatalf("pending should not parse")
	}
	if _, ok := ParseLoadStatus(""); ok {
		t.Fatalf("empty should not parse")
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, r := range []string{"admin", "carrier", "dispatcher", "shipper", "fleet_owner"} {
		if _, ok := ParseRole(r); !ok {
			t.Errorf("ParseRole(%q) should succeed", r)
		}
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatalf("superuser should not parse")
	}
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	if got := NormalizeName("  Alice   Smith "); got != "Alice Smith" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeName("   "); got != "" {
		t.Fatalf("got %q", got)
	}
}
