// Package runner drives one analysis pass: ingest the corpus, evaluate every
// configured fact against it, and hand the results to the report writer.
package runner

import (
	"context"
	"runtime"

	"xfid/almanac"
	"xfid/config"
	"xfid/diag"
	"xfid/facts"
	"xfid/ingest"
	"xfid/logger"
	"xfid/output"
	"xfid/tracing"
)

// SimilarityResultFact names the published near-duplicate aggregate.
const SimilarityResultFact = "fileSimilarityResults"

// Run executes one full pass over cfg.StartPaths.
func Run(ctx context.Context, cfg *config.Config, metrics *output.Metrics, writer *output.Writer) error {
	ctx, endTask := tracing.StartTask(ctx, "analysis-run")
	defer endTask()

	adjustConcurrency(cfg)

	watchdog := diag.NewController(diag.Options{
		SlowIngestThreshold: cfg.SlowIngestThreshold,
		Dir:                 cfg.DiagDir,
		GoroutineLeak:       cfg.DiagGoroutineDump,
		ProgressCountFn:     ingest.ProcessedCount,
	})
	watchdog.Start(ctx)

	endIngest := tracing.StartRegion(ctx, "ingest")
	corpus, err := ingest.BuildCorpus(ctx, cfg)
	endIngest()
	watchdog.Close()
	if err != nil {
		return err
	}

	store := almanac.New()
	store.AddRuntimeFact(almanac.CorpusFact, corpus)

	// Sentinel excluded.
	fileCount := len(corpus) - 1
	if metrics != nil {
		metrics.TotalFiles = fileCount
		metrics.FilesIngested = fileCount
	}

	for _, analysis := range cfg.Analyses {
		endRegion := tracing.StartRegion(ctx, "analysis:"+analysis.Name)
		result := facts.GlobalFileAnalysis(ctx, facts.PatternSpec{
			Patterns:       analysis.Patterns,
			NewPatterns:    analysis.NewPatterns,
			LegacyPatterns: analysis.LegacyPatterns,
			FileFilter:     analysis.FileFilter,
			ResultFact:     analysis.ResultFact,
		}, store)
		endRegion()

		if result.Summary != nil {
			if metrics != nil {
				metrics.TotalMatches += result.Summary.TotalMatches
			}
			logger.Infof("Analysis %s: %d matches across %d files",
				analysis.Name, result.Summary.TotalMatches, result.Summary.TotalFiles)
		} else {
			logger.Warnf("Analysis %s did not run", analysis.Name)
		}
		if writer != nil {
			writer.WriteAnalysis(output.AnalysisRecord{
				Name:       analysis.Name,
				ResultFact: analysis.ResultFact,
				Result:     result,
			})
		}
	}

	if cfg.SimilarityScan {
		endRegion := tracing.StartRegion(ctx, "analysis:similarity")
		result := facts.FileSimilarityAnalysis(ctx, facts.SimilaritySpec{
			MaxDistance: cfg.SimilarityMaxDistance,
			ResultFact:  SimilarityResultFact,
		}, store)
		endRegion()

		if result.Summary != nil {
			logger.Infof("Similarity analysis: %d near-duplicate pairs across %d files",
				result.Summary.PairCount, result.Summary.TotalFiles)
		} else {
			logger.Warn("Similarity analysis did not run")
		}
		if writer != nil {
			writer.WriteAnalysis(output.AnalysisRecord{
				Name:       "fileSimilarity",
				ResultFact: SimilarityResultFact,
				Result:     result,
			})
		}
	}

	return nil
}

// adjustConcurrency maps the nice level onto the worker count unless the
// user pinned one explicitly.
func adjustConcurrency(cfg *config.Config) {
	if cfg.ConcurrencySet {
		return
	}
	switch cfg.NiceLevel {
	case "high":
		cfg.ConcurrencyLevel = runtime.NumCPU() * 2
	case "low":
		cfg.ConcurrencyLevel = max(1, runtime.NumCPU()/2)
	default:
		cfg.ConcurrencyLevel = runtime.NumCPU()
	}
}
