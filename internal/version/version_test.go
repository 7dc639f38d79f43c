package version

import "testing"

func TestString(t *testing.T) {
	got := String("bpearl")
	want := "bpearl dev (commit unknown, built unknown)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
