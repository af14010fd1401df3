package facts

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"xfid/almanac"
	"xfid/fuzzy"
	"xfid/ingest"
	"xfid/logger"
)

// SimilaritySpec requests a near-duplicate analysis over the corpus.
type SimilaritySpec struct {
	FileFilter  string `json:"fileFilter,omitempty"`
	MaxDistance int    `json:"maxDistance"`
	Algorithm   string `json:"algorithm,omitempty"`
	ResultFact  string `json:"resultFact,omitempty"`
}

// SimilarPair is one near-duplicate file pair with its hash distance.
type SimilarPair struct {
	FilePathA string `json:"filePathA"`
	FilePathB string `json:"filePathB"`
	Distance  int    `json:"distance"`
}

// SimilaritySummary mirrors the pattern analysis summary shape: absent when
// the analysis did not run.
type SimilaritySummary struct {
	TotalFiles  int `json:"totalFiles"`
	HashedFiles int `json:"hashedFiles"`
	PairCount   int `json:"pairCount"`
}

// SimilarityResult is the published near-duplicate aggregate.
type SimilarityResult struct {
	Pairs   []SimilarPair      `json:"pairs"`
	Summary *SimilaritySummary `json:"summary,omitempty"`
}

// FileSimilarityAnalysis computes fuzzy-hash distances between all corpus
// file pairs and reports those at or under spec.MaxDistance. Like the
// pattern analysis, it fails soft: errors are logged and an empty result is
// returned.
func FileSimilarityAnalysis(ctx context.Context, spec SimilaritySpec, alm Almanac) SimilarityResult {
	corpusValue, err := alm.FactValue(ctx, almanac.CorpusFact)
	if err != nil {
		logger.Errorf("File similarity analysis: corpus unavailable: %v", err)
		return SimilarityResult{Pairs: []SimilarPair{}}
	}

	result, err := similarityScan(spec, corpusValue)
	if err != nil {
		logger.Errorf("File similarity analysis failed: %v", err)
		return SimilarityResult{Pairs: []SimilarPair{}}
	}

	if spec.ResultFact != "" {
		alm.AddRuntimeFact(spec.ResultFact, result)
	}
	return result
}

func similarityScan(spec SimilaritySpec, corpusValue interface{}) (SimilarityResult, error) {
	corpus, ok := corpusValue.([]ingest.FileRecord)
	if !ok {
		return SimilarityResult{Pairs: []SimilarPair{}}, fmt.Errorf("%w: got %T", ErrInvalidCorpus, corpusValue)
	}

	algorithm := spec.Algorithm
	if algorithm == "" {
		algorithm = "tlsh"
	}
	hasher, ok := fuzzy.Lookup(algorithm)
	if !ok {
		return SimilarityResult{Pairs: []SimilarPair{}}, errors.New("unknown similarity algorithm: " + algorithm)
	}

	fileFilter := regexp.MustCompile("")
	if spec.FileFilter != "" {
		re, err := regexp.Compile(spec.FileFilter)
		if err != nil {
			return SimilarityResult{Pairs: []SimilarPair{}}, fmt.Errorf("invalid file filter %q: %w", spec.FileFilter, err)
		}
		fileFilter = re
	}

	type hashedFile struct {
		path string
		hash string
	}
	var (
		totalFiles int
		hashed     []hashedFile
	)
	for _, record := range corpus {
		if record.IsSentinel() || record.FileContent == "" {
			continue
		}
		if !fileFilter.MatchString(record.FilePath) {
			continue
		}
		totalFiles++
		hash, err := hasher.HashBytes([]byte(record.FileContent))
		if err != nil {
			// Small or low-variance files cannot be hashed; not an error.
			logger.Debugf("Similarity hash skipped for %s: %v", record.FilePath, err)
			continue
		}
		hashed = append(hashed, hashedFile{path: record.FilePath, hash: hash})
	}

	pairs := []SimilarPair{}
	for i := 0; i < len(hashed); i++ {
		for j := i + 1; j < len(hashed); j++ {
			distance, err := hasher.Distance(hashed[i].hash, hashed[j].hash)
			if err != nil {
				logger.Debugf("Similarity distance failed for %s / %s: %v", hashed[i].path, hashed[j].path, err)
				continue
			}
			if distance <= spec.MaxDistance {
				pairs = append(pairs, SimilarPair{
					FilePathA: hashed[i].path,
					FilePathB: hashed[j].path,
					Distance:  distance,
				})
			}
		}
	}

	return SimilarityResult{
		Pairs: pairs,
		Summary: &SimilaritySummary{
			TotalFiles:  totalFiles,
			HashedFiles: len(hashed),
			PairCount:   len(pairs),
		},
	}, nil
}
