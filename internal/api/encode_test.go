package api

import "testing"

func TestEncodeComponent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"a b", "a%20b"},
		{"a+b&c=d", "a%2Bb%26c%3Dd"},
		{"keep-_.!~*'()", "keep-_.!~*'()"},
		{"/?#", "%2F%3F%23"},
		{"패션", "%ED%8C%A8%EC%85%98"},
		{"None", "None"},
	}
	for _, tt := range tests {
		if got := EncodeComponent(tt.in); got != tt.want {
			t.Fatalf("EncodeComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "None", "none", " NONE "} {
		got, err := ParseRange(in)
		if err != nil || got != RangeNone {
			t.Fatalf("ParseRange(%q) = %q, %v", in, got, err)
		}
	}
	if got, err := ParseRange("m3"); err != nil || got != RangeQuarter {
		t.Fatalf("ParseRange(m3) = %q, %v", got, err)
	}
	if _, err := ParseRange("fortnight"); err == nil {
		t.Fatal("expected error for unknown range")
	}
	if Range("").String() != "None" {
		t.Fatal("zero range should encode as None")
	}
}
