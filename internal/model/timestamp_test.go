package model

import (
	"testing"
	"time"
)

func TestNextUpdatedAt(t *testing.T) {
	prev := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	later := prev.Add(time.Second)
	if got := NextUpdatedAt(prev, later); !got.Equal(later) {
		t.Errorf("NextUpdatedAt(later) = %v, want %v", got, later)
	}

	if got := NextUpdatedAt(prev, prev); !got.After(prev) {
		t.Errorf("NextUpdatedAt(same) = %v, want after %v", got, prev)
	}

	earlier := prev.Add(-time.Hour)
	if got := NextUpdatedAt(prev, earlier); !got.Equal(prev.Add(time.Microsecond)) {
		t.Errorf("NextUpdatedAt(earlier) = %v", got)
	}

	// サブマイクロ秒の差は切り捨てられるため前回値+1µsになる
	if got := NextUpdatedAt(prev, prev.Add(500*time.Nanosecond)); !got.Equal(prev.Add(time.Microsecond)) {
		t.Errorf("NextUpdatedAt(sub-micro) = %v", got)
	}
}

func TestTimestamp(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	in := time.Date(2024, 1, 1, 9, 0, 0, 1234567, jst)
	got := Timestamp(in)
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if got.Nanosecond() != 1234000 {
		t.Errorf("nanosecond = %d, want 1234000", got.Nanosecond())
	}
}
