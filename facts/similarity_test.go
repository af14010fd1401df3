package facts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"xfid/ingest"
)

func proseContent(seed string) string {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "%s line %d: the quick brown fox jumps over the lazy dog %d\n", seed, i, i*7)
	}
	return b.String()
}

func binaryishContent() string {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&b, "%02x%03d", (i*37)%256, i*i%997)
	}
	return b.String()
}

func TestSimilarityFindsIdenticalPair(t *testing.T) {
	corpus := []ingest.FileRecord{
		{FileName: "a.ts", FilePath: "a.ts", FileContent: proseContent("alpha")},
		{FileName: "b.ts", FilePath: "b.ts", FileContent: proseContent("alpha")},
		{FileName: "c.ts", FilePath: "c.ts", FileContent: binaryishContent()},
		ingest.SentinelRecord(),
	}
	alm := &stubAlmanac{corpus: corpus}
	result := FileSimilarityAnalysis(context.Background(), SimilaritySpec{
		MaxDistance: 0,
		ResultFact:  "dupes",
	}, alm)

	if result.Summary == nil {
		t.Fatal("expected summary")
	}
	if result.Summary.TotalFiles != 3 {
		t.Fatalf("totalFiles = %d", result.Summary.TotalFiles)
	}
	if len(result.Pairs) != 1 {
		t.Fatalf("pairs = %v", result.Pairs)
	}
	pair := result.Pairs[0]
	if pair.FilePathA != "a.ts" || pair.FilePathB != "b.ts" || pair.Distance != 0 {
		t.Fatalf("pair = %+v", pair)
	}
	if _, ok := alm.published["dupes"].(SimilarityResult); !ok {
		t.Fatal("result not published")
	}
}

func TestSimilaritySkipsUnhashableFiles(t *testing.T) {
	corpus := []ingest.FileRecord{
		{FileName: "tiny.ts", FilePath: "tiny.ts", FileContent: "x"},
		{FileName: "a.ts", FilePath: "a.ts", FileContent: proseContent("alpha")},
	}
	alm := &stubAlmanac{corpus: corpus}
	result := FileSimilarityAnalysis(context.Background(), SimilaritySpec{MaxDistance: 50}, alm)

	if result.Summary.TotalFiles != 2 {
		t.Fatalf("totalFiles = %d", result.Summary.TotalFiles)
	}
	if result.Summary.HashedFiles != 1 {
		t.Fatalf("hashedFiles = %d", result.Summary.HashedFiles)
	}
}

func TestSimilarityFileFilter(t *testing.T) {
	corpus := []ingest.FileRecord{
		{FileName: "a.ts", FilePath: "a.ts", FileContent: proseContent("alpha")},
		{FileName: "a.md", FilePath: "a.md", FileContent: proseContent("alpha")},
	}
	alm := &stubAlmanac{corpus: corpus}
	result := FileSimilarityAnalysis(context.Background(), SimilaritySpec{
		FileFilter:  `\.ts$`,
		MaxDistance: 0,
	}, alm)

	if result.Summary.TotalFiles != 1 {
		t.Fatalf("totalFiles = %d", result.Summary.TotalFiles)
	}
	if len(result.Pairs) != 0 {
		t.Fatalf("pairs = %v", result.Pairs)
	}
}

func TestSimilarityFailsSoft(t *testing.T) {
	result := FileSimilarityAnalysis(context.Background(), SimilaritySpec{}, &stubAlmanac{corpus: 42})
	if result.Summary != nil || len(result.Pairs) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}

	result = FileSimilarityAnalysis(context.Background(), SimilaritySpec{}, &stubAlmanac{err: errors.New("down")})
	if result.Summary != nil {
		t.Fatal("expected empty result on corpus error")
	}

	_, err := similarityScan(SimilaritySpec{Algorithm: "nope"}, []ingest.FileRecord{})
	if err == nil {
		t.Fatal("expected unknown algorithm error")
	}
}
