package systeminfo

import (
	"runtime"
	"testing"
)

func TestCollect(t *testing.T) {
	info := Collect()
	if info == nil {
		t.Fatal("expected snapshot")
	}
	if info.OS != runtime.GOOS {
		t.Fatalf("os = %q", info.OS)
	}
	if info.CPUCount <= 0 {
		t.Fatalf("cpu count = %d", info.CPUCount)
	}
	if info.GoVersion == "" {
		t.Fatal("missing go version")
	}
	if info.CollectedAt == "" {
		t.Fatal("missing collection timestamp")
	}
}
