package timeutil

import (
	"testing"
	"time"
)

func TestParseAndFormatDate(t *testing.T) {
	d, err := ParseDate("2024-09-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatDate(d); got != "2024-09-05" {
		t.Fatalf("expected round trip, got %s", got)
	}
	if _, err := ParseDate("09/05/2024"); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}

func TestParseTimestampAcceptsNaiveAndOffsetValues(t *testing.T) {
	want := time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2024-09-08T17:00:00Z",
		"2024-09-08T13:00:00-04:00",
		"2024-09-08T17:00:00",
		"2024-09-08T17:00:00.000000",
		"2024-09-08 17:00:00",
	} {
		got, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}

	if _, err := ParseTimestamp("kickoff soon"); err == nil {
		t.Fatalf("expected error for garbage timestamp")
	}
}

func TestResolveLocation(t *testing.T) {
	if ResolveLocation("") != time.Local {
		t.Fatalf("expected local for empty name")
	}
	if ResolveLocation("Not/AZone") != time.Local {
		t.Fatalf("expected local for unknown zone")
	}
	if loc := ResolveLocation("UTC"); loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %s", loc)
	}
}
