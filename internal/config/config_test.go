package config

import "testing"

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000")
	if err != nil || ts != 1700000000 {
		t.Fatalf("unix seconds: ts=%d err=%v", ts, err)
	}
	ts, err = ParseTimestamp("2023-11-14T22:13:20Z")
	if err != nil || ts != 1700000000 {
		t.Fatalf("rfc3339: ts=%d err=%v", ts, err)
	}
	if ts, err := ParseTimestamp("  "); err != nil || ts != 0 {
		t.Fatalf("blank must be zero: ts=%d err=%v", ts, err)
	}
	if _, err := ParseTimestamp("not-a-time"); err == nil {
		t.Fatalf("garbage must fail")
	}
}

func TestSplitAndClean(t *testing.T) {
	got := splitAndClean(" 0xaa, ,0xbb ,")
	if len(got) != 2 || got[0] != "0xaa" || got[1] != "0xbb" {
		t.Fatalf("got %v", got)
	}
	if got := splitAndClean(""); got != nil {
		t.Fatalf("empty input must be nil, got %v", got)
	}
}
