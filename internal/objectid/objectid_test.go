package objectid

import (
	"encoding/hex"
	"testing"
	"time"
)

func TestNew_Format(t *testing.T) {
	id := New()
	if len(id) != 24 {
		t.Fatalf("expected 24 hex characters, got %d: %q", len(id), id)
	}
	if !IsValid(id) {
		t.Errorf("New produced an id IsValid rejects: %q", id)
	}
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("duplicate id after %d generations: %q", i, id)
		}
		seen[id] = true
	}
}

func TestAt_TimestampPrefix(t *testing.T) {
	ts := time.Unix(0x5f000000, 0)
	id := at(ts)

	raw, err := hex.DecodeString(id)
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	got := uint32(raw[0])<<24 | uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3])
	if got != 0x5f000000 {
		t.Errorf("expected timestamp prefix %x, got %x", 0x5f000000, got)
	}
}

func TestAt_CounterIncrements(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	a := at(ts)
	b := at(ts)

	if a[:18] != b[:18] {
		t.Fatalf("timestamp+machine prefix should be stable: %q vs %q", a[:18], b[:18])
	}
	ca, _ := hex.DecodeString(a[18:])
	cb, _ := hex.DecodeString(b[18:])
	na := uint32(ca[0])<<16 | uint32(ca[1])<<8 | uint32(ca[2])
	nb := uint32(cb[0])<<16 | uint32(cb[1])<<8 | uint32(cb[2])
	if nb != (na+1)&0xFFFFFF {
		t.Errorf("counter did not increment by one: %x -> %x", na, nb)
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"507f1f77bcf86cd79943901", false},
		{"507f1f77bcf86cd7994390111", false},
		{"507f1f77bcf86cd79943901z", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsValid(c.id); got != c.want {
			t.Errorf("IsValid(%q) = %v, want %v", c.id, got, c.want)
		}
	}
}
