package ingest

import (
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/djherbis/times"
	"github.com/h2non/filetype"
)

const defaultMaxContentBytes int64 = 10 * 1024 * 1024

func readFileContent(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 || maxSize > defaultMaxContentBytes {
		maxSize = defaultMaxContentBytes
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if stat, err := file.Stat(); err == nil && stat.Size() > maxSize {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(file, maxSize))
}

// isScannableText reports whether content is worth feeding to line-oriented
// pattern analysis. Known binary container types are rejected via magic
// bytes, everything else falls back to a UTF-8/control-byte heuristic.
func isScannableText(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	if kind, err := filetype.Match(sample); err == nil && kind != filetype.Unknown {
		if !strings.HasPrefix(kind.MIME.Value, "text/") {
			return false
		}
	}
	return looksLikeText(sample)
}

func looksLikeText(sample []byte) bool {
	if len(sample) == 0 {
		return false
	}
	if !utf8.Valid(sample) {
		return false
	}
	var control int
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			control++
		}
	}
	return control <= len(sample)/10
}

type fileTimes struct {
	ModTime      string
	CreationTime string
	AccessTime   string
}

func statFileTimes(path string) (fileTimes, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return fileTimes{}, err
	}
	result := fileTimes{
		ModTime:    ts.ModTime().Format(time.RFC3339),
		AccessTime: ts.AccessTime().Format(time.RFC3339),
	}
	if ts.HasBirthTime() {
		result.CreationTime = ts.BirthTime().Format(time.RFC3339)
	}
	return result, nil
}
