package ingest

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/FastFilter/xorfilter"

	"xfid/logger"
)

// Baseline is an approved-content filter. It holds an xor filter over the
// xxhash64 digests of previously reviewed file contents; files whose digest
// is present are skipped during ingestion so repeat runs only analyze what
// changed.
type Baseline struct {
	filter *xorfilter.Xor8
}

// LoadBaseline reads one hex digest per line. Blank lines and '#' comments
// are ignored. An empty file yields a nil baseline.
func LoadBaseline(path string) (*Baseline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var keys []uint64
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, err := strconv.ParseUint(line, 16, 64)
		if err != nil {
			logger.Warnf("Skipping malformed baseline digest %q: %v", line, err)
			continue
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, nil
	}

	filter, err := xorfilter.Populate(keys)
	if err != nil {
		return nil, err
	}
	return &Baseline{filter: filter}, nil
}

// Contains reports whether the digest belongs to the baseline. Xor filters
// admit a small false-positive rate, which here only means an occasional
// unchanged-looking file is skipped.
func (b *Baseline) Contains(digest uint64) bool {
	if b == nil || b.filter == nil {
		return false
	}
	return b.filter.Contains(digest)
}
