package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"xfid/config"
	"xfid/hasher"
	"xfid/logger"
)

func init() {
	logger.Init("error")
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		StartPaths:       []string{dir},
		ConcurrencyLevel: 2,
		MaxFileSize:      1 << 20,
	}
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("write %s failed: %v", name, err)
	}
	return path
}

func TestBuildCorpusSentinelLast(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "b.ts", []byte("beta\n"))
	writeFile(t, dir, "a.ts", []byte("alpha\n"))

	corpus, err := BuildCorpus(context.Background(), testConfig(dir))
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 3 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
	if !corpus[len(corpus)-1].IsSentinel() {
		t.Fatal("sentinel must be last")
	}
	if !sort.SliceIsSorted(corpus[:2], func(i, j int) bool {
		return corpus[i].FilePath < corpus[j].FilePath
	}) {
		t.Fatal("records must be sorted by path")
	}
	if corpus[0].FileName != "a.ts" || corpus[0].FileContent != "alpha\n" {
		t.Fatalf("first record = %+v", corpus[0])
	}
	if corpus[0].Digest == "" {
		t.Fatal("missing digest")
	}
}

func TestBuildCorpusSkipsBinary(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "text.ts", []byte("hello\n"))
	writeFile(t, dir, "blob.bin", []byte{0x00, 0x01, 0x02, 0xFF, 0x00})

	corpus, err := BuildCorpus(context.Background(), testConfig(dir))
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
	if corpus[0].FileName != "text.ts" {
		t.Fatalf("kept %q", corpus[0].FileName)
	}
}

func TestBuildCorpusSkipsOversized(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "small.ts", []byte("ok\n"))
	writeFile(t, dir, "big.ts", make([]byte, 2048))

	cfg := testConfig(dir)
	cfg.MaxFileSize = 1024
	corpus, err := BuildCorpus(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
	if corpus[0].FileName != "small.ts" {
		t.Fatalf("kept %q", corpus[0].FileName)
	}
}

func TestBuildCorpusSkipsIgnoredDirs(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "keep.ts", []byte("keep\n"))
	writeFile(t, dir, filepath.Join("node_modules", "dep.ts"), []byte("dep\n"))
	writeFile(t, dir, filepath.Join(".git", "config"), []byte("git\n"))

	corpus, err := BuildCorpus(context.Background(), testConfig(dir))
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
}

func TestBuildCorpusExcludePatterns(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "keep.ts", []byte("keep\n"))
	writeFile(t, dir, "skip.md", []byte("skip\n"))

	cfg := testConfig(dir)
	cfg.ExcludePatterns = []string{"*.md"}
	corpus, err := BuildCorpus(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
	if corpus[0].FileName != "keep.ts" {
		t.Fatalf("kept %q", corpus[0].FileName)
	}
}

func TestBuildCorpusBaselineSkip(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	known := []byte("already reviewed\n")
	writeFile(t, dir, "known.ts", known)
	writeFile(t, dir, "fresh.ts", []byte("new content\n"))

	baselineFile := filepath.Join(t.TempDir(), "baseline.txt")
	lines := fmt.Sprintf("# reviewed digests\n%016x\n", hasher.Sum64(known))
	if err := os.WriteFile(baselineFile, []byte(lines), 0600); err != nil {
		t.Fatalf("write baseline failed: %v", err)
	}

	cfg := testConfig(dir)
	cfg.BaselineFile = baselineFile
	corpus, err := BuildCorpus(context.Background(), cfg)
	if err != nil {
		t.Fatalf("build corpus failed: %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus size = %d", len(corpus))
	}
	if corpus[0].FileName != "fresh.ts" {
		t.Fatalf("kept %q", corpus[0].FileName)
	}
}

func TestBuildCorpusCancelled(t *testing.T) {
	t.Setenv("XFID_DISABLE_PROGRESS", "1")
	dir := t.TempDir()
	writeFile(t, dir, "a.ts", []byte("alpha\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BuildCorpus(ctx, testConfig(dir)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSentinelRecord(t *testing.T) {
	record := SentinelRecord()
	if !record.IsSentinel() {
		t.Fatal("sentinel not recognized")
	}
	if record.FileName != RepoGlobalCheck || record.FilePath != RepoGlobalCheck {
		t.Fatalf("sentinel = %+v", record)
	}
	if (FileRecord{FileName: "real.ts"}).IsSentinel() {
		t.Fatal("real file flagged as sentinel")
	}
}

func TestLooksLikeText(t *testing.T) {
	if !looksLikeText([]byte("plain text\nwith lines\n")) {
		t.Fatal("text rejected")
	}
	if looksLikeText([]byte{0x00, 0x01, 0x02}) {
		t.Fatal("binary accepted")
	}
	if looksLikeText(nil) {
		t.Fatal("empty accepted")
	}
}

func TestLoadBaseline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.txt")
	content := "# comment\n\n00000000deadbeef\nnot-hex\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write baseline failed: %v", err)
	}

	baseline, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("load baseline failed: %v", err)
	}
	if baseline == nil {
		t.Fatal("expected baseline")
	}
	if !baseline.Contains(0xdeadbeef) {
		t.Fatal("known digest missing")
	}

	var nilBaseline *Baseline
	if nilBaseline.Contains(1) {
		t.Fatal("nil baseline matched")
	}
}

func TestLoadBaselineEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# only comments\n"), 0600); err != nil {
		t.Fatalf("write baseline failed: %v", err)
	}
	baseline, err := LoadBaseline(path)
	if err != nil {
		t.Fatalf("load baseline failed: %v", err)
	}
	if baseline != nil {
		t.Fatal("expected nil baseline for empty file")
	}
}
