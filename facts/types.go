// Package facts holds the analysis fact functions evaluated against the
// ingested corpus. Each fact reads its inputs from the shared fact store
// and publishes its aggregate back under a caller-chosen name.
package facts

import "context"

// Almanac is the slice of the fact store the fact functions need.
type Almanac interface {
	FactValue(ctx context.Context, name string) (interface{}, error)
	AddRuntimeFact(name string, value interface{})
}

// PatternSpec is one pattern-analysis request. Either Patterns (unified
// form) or NewPatterns/LegacyPatterns (categorized form) is populated; when
// both are present the unified form wins.
type PatternSpec struct {
	Patterns       []string `json:"patterns,omitempty"`
	NewPatterns    []string `json:"newPatterns,omitempty"`
	LegacyPatterns []string `json:"legacyPatterns,omitempty"`
	FileFilter     string   `json:"fileFilter,omitempty"`
	ResultFact     string   `json:"resultFact,omitempty"`
}

const (
	categoryNew    = "new"
	categoryLegacy = "legacy"
)

type taggedPattern struct {
	source   string
	category string // "" for unified patterns
}

// Categorized reports whether the request uses the new/legacy form.
func (s PatternSpec) Categorized() bool {
	if len(s.Patterns) > 0 {
		return false
	}
	return len(s.NewPatterns) > 0 || len(s.LegacyPatterns) > 0
}

// normalize flattens the two input shapes into one ordered, deduplicated
// list of (pattern, category) pairs so the scan loop is shape-agnostic.
func (s PatternSpec) normalize() []taggedPattern {
	var tagged []taggedPattern
	seen := make(map[string]struct{})
	add := func(source, category string) {
		if source == "" {
			return
		}
		if _, ok := seen[source]; ok {
			return
		}
		seen[source] = struct{}{}
		tagged = append(tagged, taggedPattern{source: source, category: category})
	}
	if len(s.Patterns) > 0 {
		for _, p := range s.Patterns {
			add(p, "")
		}
		return tagged
	}
	for _, p := range s.NewPatterns {
		add(p, categoryNew)
	}
	for _, p := range s.LegacyPatterns {
		add(p, categoryLegacy)
	}
	return tagged
}

// MatchRecord is a single pattern occurrence. Context is the full source
// line, trimmed and masked; the match token itself is stored raw.
type MatchRecord struct {
	LineNumber int    `json:"lineNumber"`
	Match      string `json:"match"`
	Context    string `json:"context"`
}

// FileMatchGroup aggregates one pattern's matches within one file.
type FileMatchGroup struct {
	FilePath   string        `json:"filePath"`
	MatchCount int           `json:"matchCount"`
	Matches    []MatchRecord `json:"matches"`
}

// Summary is the roll-up block of an AnalysisResult. The category fields
// are present only for categorized specs.
type Summary struct {
	TotalFiles          int            `json:"totalFiles"`
	TotalMatches        int            `json:"totalMatches"`
	PatternCounts       map[string]int `json:"patternCounts"`
	NewPatternsTotal    *int           `json:"newPatternsTotal,omitempty"`
	LegacyPatternsTotal *int           `json:"legacyPatternsTotal,omitempty"`
	NewPatternCounts    map[string]int `json:"newPatternCounts,omitempty"`
	LegacyPatternCounts map[string]int `json:"legacyPatternCounts,omitempty"`
}

// AnalysisResult is the published aggregate of one pattern analysis. A nil
// Summary means the analysis did not run; downstream consumers must not
// read it as "zero findings".
type AnalysisResult struct {
	MatchCounts map[string]int              `json:"matchCounts"`
	FileMatches map[string][]FileMatchGroup `json:"fileMatches"`
	Summary     *Summary                    `json:"summary,omitempty"`
}

func emptyResult() AnalysisResult {
	return AnalysisResult{
		MatchCounts: map[string]int{},
		FileMatches: map[string][]FileMatchGroup{},
	}
}
