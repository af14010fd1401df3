package hasher

import "testing"

func TestSum64IsStable(t *testing.T) {
	a := Sum64([]byte("hello"))
	b := Sum64([]byte("hello"))
	if a != b {
		t.Fatal("same content must hash equal")
	}
	if Sum64([]byte("hello")) == Sum64([]byte("world")) {
		t.Fatal("different content should differ")
	}
}

func TestSum64StringWidth(t *testing.T) {
	s := Sum64String([]byte("hello"))
	if len(s) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", s)
	}
}

func TestComputeDigests(t *testing.T) {
	digests := ComputeDigests([]byte("hello"), []string{"sha256", "blake3", "xxh64", "md5000"})
	if len(digests["sha256"]) != 64 {
		t.Fatalf("sha256: %q", digests["sha256"])
	}
	if len(digests["blake3"]) != 64 {
		t.Fatalf("blake3: %q", digests["blake3"])
	}
	if len(digests["xxh64"]) != 16 {
		t.Fatalf("xxh64: %q", digests["xxh64"])
	}
	if _, ok := digests["md5000"]; ok {
		t.Fatal("unknown algorithm should be skipped")
	}
}
