package fuzzy

import (
	"bytes"
	"testing"
)

func TestLookup(t *testing.T) {
	if _, ok := Lookup("tlsh"); !ok {
		t.Fatal("tlsh not registered")
	}
	if _, ok := Lookup("TLSH"); !ok {
		t.Fatal("lookup should be case insensitive")
	}
	if _, ok := Lookup("missing"); ok {
		t.Fatal("unexpected hasher")
	}
}

func TestAvailable(t *testing.T) {
	names := Available()
	found := false
	for _, name := range names {
		if name == "tlsh" {
			found = true
		}
	}
	if !found {
		t.Fatalf("tlsh missing from %v", names)
	}
}

func TestTLSHRoundTrip(t *testing.T) {
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog 0123456789\n"), 20)
	hasher, ok := Lookup("tlsh")
	if !ok {
		t.Fatal("tlsh not registered")
	}

	hash, err := hasher.HashBytes(content)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	distance, err := hasher.Distance(hash, hash)
	if err != nil {
		t.Fatalf("distance failed: %v", err)
	}
	if distance != 0 {
		t.Fatalf("self distance = %d", distance)
	}
}

func TestTLSHRejectsTinyInput(t *testing.T) {
	hasher, ok := Lookup("tlsh")
	if !ok {
		t.Fatal("tlsh not registered")
	}
	if _, err := hasher.HashBytes([]byte("x")); err == nil {
		t.Fatal("expected error for tiny input")
	}
}
