package facts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"xfid/almanac"
	"xfid/ingest"
	"xfid/logger"
	"xfid/mask"
)

// ErrInvalidCorpus marks a corpus fact that did not resolve to a file
// record slice.
var ErrInvalidCorpus = errors.New("corpus is not a file record slice")

// GlobalFileAnalysis scans the shared corpus for every pattern in params
// and publishes the aggregate under params.ResultFact. It never fails the
// caller: a broken corpus or pattern is logged and an empty result (no
// summary) is returned, so one misconfigured analysis cannot abort a run.
func GlobalFileAnalysis(ctx context.Context, params PatternSpec, alm Almanac) AnalysisResult {
	corpusValue, err := alm.FactValue(ctx, almanac.CorpusFact)
	if err != nil {
		logger.Errorf("Global file analysis: corpus unavailable: %v", err)
		return emptyResult()
	}

	result, err := ScanCorpus(params, corpusValue)
	if err != nil {
		if errors.Is(err, ErrInvalidCorpus) {
			logger.Errorf("Global file analysis: %v", err)
		} else {
			logger.Errorf("Global file analysis failed: %v", err)
		}
		return emptyResult()
	}

	if params.ResultFact != "" {
		alm.AddRuntimeFact(params.ResultFact, result)
	}
	return result
}

// ScanCorpus is the scan itself, separated from the fail-soft fact boundary
// so failures stay observable in tests.
func ScanCorpus(params PatternSpec, corpusValue interface{}) (AnalysisResult, error) {
	corpus, ok := corpusValue.([]ingest.FileRecord)
	if !ok {
		return emptyResult(), fmt.Errorf("%w: got %T", ErrInvalidCorpus, corpusValue)
	}

	patterns := params.normalize()
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.source)
		if err != nil {
			return emptyResult(), fmt.Errorf("invalid pattern %q: %w", p.source, err)
		}
		compiled[i] = re
	}

	fileFilter := regexp.MustCompile("")
	if params.FileFilter != "" {
		re, err := regexp.Compile(params.FileFilter)
		if err != nil {
			return emptyResult(), fmt.Errorf("invalid file filter %q: %w", params.FileFilter, err)
		}
		fileFilter = re
	}

	result := emptyResult()
	for _, p := range patterns {
		// Zero-hit patterns stay visible so "ran, no hits" is
		// distinguishable from "did not run".
		result.MatchCounts[p.source] = 0
		result.FileMatches[p.source] = []FileMatchGroup{}
	}

	logger.Debugf("Scanning %d files with %d patterns", len(corpus), len(patterns))

	var totalFiles int
	for _, record := range corpus {
		if record.IsSentinel() {
			continue
		}
		if !fileFilter.MatchString(record.FilePath) {
			continue
		}
		if record.FileContent == "" {
			continue
		}
		totalFiles++

		lines := strings.Split(record.FileContent, "\n")
		for i, p := range patterns {
			matches := scanLines(lines, compiled[i])
			if len(matches) == 0 {
				continue
			}
			result.MatchCounts[p.source] += len(matches)
			result.FileMatches[p.source] = append(result.FileMatches[p.source], FileMatchGroup{
				FilePath:   record.FilePath,
				MatchCount: len(matches),
				Matches:    matches,
			})
		}
	}

	summary := &Summary{
		TotalFiles:    totalFiles,
		PatternCounts: result.MatchCounts,
	}
	for _, count := range result.MatchCounts {
		summary.TotalMatches += count
	}
	if params.Categorized() {
		summary.NewPatternCounts, summary.NewPatternsTotal = categoryRollup(params.NewPatterns, result.MatchCounts)
		summary.LegacyPatternCounts, summary.LegacyPatternsTotal = categoryRollup(params.LegacyPatterns, result.MatchCounts)
	}
	result.Summary = summary
	return result, nil
}

func scanLines(lines []string, re *regexp.Regexp) []MatchRecord {
	var matches []MatchRecord
	for lineIdx, line := range lines {
		locs := re.FindAllStringIndex(line, -1)
		if len(locs) == 0 {
			continue
		}
		// The surrounding line is masked before it is recorded; the match
		// token itself is kept verbatim.
		context := mask.String(strings.TrimSpace(line))
		for _, loc := range locs {
			matches = append(matches, MatchRecord{
				LineNumber: lineIdx + 1,
				Match:      line[loc[0]:loc[1]],
				Context:    context,
			})
		}
	}
	return matches
}

func categoryRollup(patterns []string, counts map[string]int) (map[string]int, *int) {
	rollup := make(map[string]int, len(patterns))
	total := 0
	for _, pattern := range patterns {
		rollup[pattern] = counts[pattern]
		total += counts[pattern]
	}
	return rollup, &total
}
