// Package ingest builds the analysis corpus: every qualifying text file
// under the configured start paths, read into memory as a FileRecord, plus
// the synthetic repo-level sentinel record.
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"xfid/config"
	"xfid/hasher"
	"xfid/logger"
	"xfid/utils"
)

var processed atomic.Int64

// ProcessedCount reports how many files the current ingestion pass has
// handled so far. The stall watchdog polls it.
func ProcessedCount() int64 {
	return processed.Load()
}

// BuildCorpus walks cfg.StartPaths and returns the ordered corpus. The
// sentinel record is always the last element.
func BuildCorpus(ctx context.Context, cfg *config.Config) ([]FileRecord, error) {
	processed.Store(0)
	matcher := utils.NewPathMatcher(cfg.IncludePatterns, cfg.ExcludePatterns)

	var baseline *Baseline
	if cfg.BaselineFile != "" {
		loaded, err := LoadBaseline(cfg.BaselineFile)
		if err != nil {
			logger.Warnf("Baseline %s unavailable: %v", cfg.BaselineFile, err)
		} else {
			baseline = loaded
		}
	}

	var ioLimiter *rate.Limiter
	if cfg.MaxIOPerSecond > 0 {
		ioLimiter = rate.NewLimiter(rate.Limit(cfg.MaxIOPerSecond), cfg.MaxIOPerSecond)
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Ingesting files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetVisibility(progressVisible()),
	)

	paths := make(chan string, cfg.ConcurrencyLevel)
	go func() {
		defer close(paths)
		for _, startPath := range cfg.StartPaths {
			err := filepath.WalkDir(startPath, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					logger.Warnf("Failed to access %s: %v", path, err)
					return nil
				}
				if d.IsDir() {
					if skipDir(d.Name()) {
						return filepath.SkipDir
					}
					return nil
				}
				if !d.Type().IsRegular() {
					return nil
				}
				if !matcher.Match(path) {
					return nil
				}
				if info, err := d.Info(); err == nil && cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize {
					logger.Debugf("Skipping large file %s", path)
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case paths <- path:
				}
				return nil
			})
			if err != nil && ctx.Err() == nil {
				logger.Warnf("Error walking path %s: %v", startPath, err)
			}
		}
	}()

	var (
		mu      sync.Mutex
		records []FileRecord
		skipped int
	)
	var wg sync.WaitGroup
	workers := cfg.ConcurrencyLevel
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if ioLimiter != nil {
					if err := ioLimiter.Wait(ctx); err != nil {
						return
					}
				}
				record, ok := ingestFile(path, cfg, baseline)
				processed.Add(1)
				_ = bar.Add(1)
				if !ok {
					mu.Lock()
					skipped++
					mu.Unlock()
					continue
				}
				mu.Lock()
				records = append(records, record)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].FilePath < records[j].FilePath
	})
	records = append(records, SentinelRecord())
	logger.Infof("Ingested %d files (%d skipped)", len(records)-1, skipped)
	return records, nil
}

func ingestFile(path string, cfg *config.Config, baseline *Baseline) (FileRecord, bool) {
	content, err := readFileContent(path, cfg.MaxFileSize)
	if err != nil {
		logger.Warnf("Failed to read %s: %v", path, err)
		return FileRecord{}, false
	}
	if content == nil || !isScannableText(content) {
		return FileRecord{}, false
	}

	digest := hasher.Sum64(content)
	if baseline.Contains(digest) {
		logger.Debugf("Baseline match, skipping %s", path)
		return FileRecord{}, false
	}

	record := FileRecord{
		FileName:    filepath.Base(path),
		FilePath:    path,
		FileContent: string(content),
		Size:        int64(len(content)),
		Digest:      hasher.Sum64String(content),
	}
	if len(cfg.HashAlgorithms) > 0 {
		record.Hashes = hasher.ComputeDigests(content, cfg.HashAlgorithms)
	}
	if ts, err := statFileTimes(path); err == nil {
		record.ModTime = ts.ModTime
		record.CreationTime = ts.CreationTime
		record.AccessTime = ts.AccessTime
	}
	return record, true
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", ".xfid":
		return true
	}
	return false
}

func progressVisible() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("XFID_DISABLE_PROGRESS")))
	return value != "1" && value != "true" && value != "yes" && value != "on"
}
