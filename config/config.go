package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"xfid/version"
)

type Config struct {
	StartPaths            []string          `json:"start_paths" yaml:"start_paths"`
	IncludePatterns       []string          `json:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns       []string          `json:"exclude_patterns" yaml:"exclude_patterns"`
	MaxFileSize           int64             `json:"max_file_size" yaml:"max_file_size"`
	ConcurrencyLevel      int               `json:"concurrency_level" yaml:"concurrency_level"`
	NiceLevel             string            `json:"nice_level" yaml:"nice_level"`
	LogLevel              string            `json:"log_level" yaml:"log_level"`
	OutputFileName        string            `json:"output_file_name" yaml:"output_file_name"`
	MaxIOPerSecond        int               `json:"max_io_per_second" yaml:"max_io_per_second"`
	HashAlgorithms        []string          `json:"hash_algorithms" yaml:"hash_algorithms"`
	BaselineFile          string            `json:"baseline_file" yaml:"baseline_file"`
	ArchetypeFile         string            `json:"archetype_file" yaml:"archetype_file"`
	ConfigFile            string            `json:"config_file" yaml:"-"`
	Watch                 bool              `json:"watch" yaml:"watch"`
	WatchDebounce         time.Duration     `json:"watch_debounce" yaml:"watch_debounce"`
	DiagDir               string            `json:"diag_dir" yaml:"diag_dir"`
	SlowIngestThreshold   time.Duration     `json:"slow_ingest_threshold" yaml:"slow_ingest_threshold"`
	DiagGoroutineDump     bool              `json:"diag_goroutine_dump" yaml:"diag_goroutine_dump"`
	SimilarityScan        bool              `json:"similarity_scan" yaml:"similarity_scan"`
	SimilarityMaxDistance int               `json:"similarity_max_distance" yaml:"similarity_max_distance"`
	Analyses              []AnalysisConfig  `json:"analyses" yaml:"analyses"`
	OtelEndpoint          string            `json:"otel_endpoint" yaml:"otel_endpoint"`
	OtelFromEnv           bool              `json:"otel_from_env" yaml:"otel_from_env"`
	OtelHeaders           map[string]string `json:"otel_headers" yaml:"otel_headers"`
	OtelServiceName       string            `json:"otel_service_name" yaml:"otel_service_name"`
	OtelTimeout           time.Duration     `json:"otel_timeout" yaml:"otel_timeout"`
	ConcurrencySet        bool              `json:"-" yaml:"-"`
}

// AnalysisConfig declares one pattern analysis. Either the unified patterns
// list or the new/legacy pair is set, never both.
type AnalysisConfig struct {
	Name           string      `json:"name" yaml:"name"`
	ResultFact     string      `json:"result_fact" yaml:"result_fact"`
	FileFilter     string      `json:"file_filter" yaml:"file_filter"`
	Patterns       PatternList `json:"patterns" yaml:"patterns"`
	NewPatterns    []string    `json:"new_patterns" yaml:"new_patterns"`
	LegacyPatterns []string    `json:"legacy_patterns" yaml:"legacy_patterns"`
}

func LoadConfig() (*Config, error) {
	now := time.Now().UTC()
	timestamp := now.Format("20060102-150405")
	cfg := &Config{
		StartPaths:            []string{"."},
		MaxFileSize:           10485760,
		ConcurrencyLevel:      runtime.NumCPU(),
		NiceLevel:             "medium",
		LogLevel:              "info",
		OutputFileName:        fmt.Sprintf("xfid-report-%s.json", timestamp),
		MaxIOPerSecond:        1000,
		HashAlgorithms:        []string{"sha256"},
		WatchDebounce:         500 * time.Millisecond,
		SimilarityMaxDistance: 50,
		OtelHeaders:           map[string]string{},
		OtelServiceName:       "xfid",
		OtelTimeout:           5 * time.Second,
	}

	startPath := flag.String("path", strings.Join(cfg.StartPaths, ","), "Comma-separated list of start paths to analyze (default: .).")
	includes := flag.String("include", "", "Comma-separated list of include patterns (default: none).")
	excludes := flag.String("exclude", "", "Comma-separated list of exclude patterns (default: none).")
	maxFileSize := flag.Int64("max-file-size", cfg.MaxFileSize, fmt.Sprintf("Maximum file size to ingest in bytes (default: %d).", cfg.MaxFileSize))
	concurrency := flag.Int("concurrency", cfg.ConcurrencyLevel, fmt.Sprintf("Ingestion concurrency level (default: %d).", cfg.ConcurrencyLevel))
	nice := flag.String("nice", cfg.NiceLevel, fmt.Sprintf("Nice level: high, medium, or low (default: %s).", cfg.NiceLevel))
	logLevel := flag.String("log-level", cfg.LogLevel, fmt.Sprintf("Log level: debug, info, warn, error, fatal, or panic (default: %s).", cfg.LogLevel))
	outputName := flag.String("output", cfg.OutputFileName, "Report file name (default: xfid-report-<timestamp>.json).")
	maxIO := flag.Int("max-io-per-second", cfg.MaxIOPerSecond, fmt.Sprintf("Maximum disk I/O operations per second (default: %d).", cfg.MaxIOPerSecond))
	hashes := flag.String("hashes", strings.Join(cfg.HashAlgorithms, ","), "Comma-separated list of digest algorithms for corpus records (sha256, blake3, xxh64).")
	baseline := flag.String("baseline", "", "Path to baseline digest file; matching files are skipped (default: none).")
	archetype := flag.String("archetype", "", "Path to YAML archetype declaring the analyses to run (default: none).")
	configFile := flag.String("config", "", "Path to JSON configuration file (default: none).")
	diagDir := flag.String("diag-dir", "", "Directory for diagnostic artifacts (default: current directory).")
	slowIngestThreshold := flag.Duration("slow-ingest-threshold", 0, "Dump diagnostics when ingestion stalls this long; 0 disables (default: 0).")
	diagGoroutineDump := flag.Bool("diag-goroutine-dump", false, "Write a goroutine profile at shutdown (default: false).")
	watch := flag.Bool("watch", cfg.Watch, "Re-run analysis when watched files change (default: false).")
	watchDebounce := flag.Duration("watch-debounce", cfg.WatchDebounce, "Quiet period before a watch-triggered re-run (default: 500ms).")
	similarity := flag.Bool("similarity", cfg.SimilarityScan, "Enable near-duplicate file analysis (default: false).")
	similarityMaxDistance := flag.Int("similarity-max-distance", cfg.SimilarityMaxDistance, fmt.Sprintf("Maximum TLSH distance treated as near-duplicate (default: %d).", cfg.SimilarityMaxDistance))
	otelEndpoint := flag.String("otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP logs endpoint (default: none).")
	otelFromEnv := flag.Bool("otel-from-env", cfg.OtelFromEnv, "Allow OTEL endpoint fallback from OTEL environment variables (default: false).")
	otelHeaders := flag.String("otel-headers", "", "Comma-separated OTEL headers (key=value) for export (default: none).")
	otelServiceName := flag.String("otel-service-name", cfg.OtelServiceName, "OTEL service name for export (default: xfid).")
	otelTimeout := flag.Duration("otel-timeout", cfg.OtelTimeout, "OTEL export timeout (default: 5s).")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = displayHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("xfid version %s\n", version.Version)
		os.Exit(0)
	}

	if *configFile != "" {
		cfg.ConfigFile = *configFile
		if err := cfg.loadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "path":
			cfg.StartPaths = parseCommaSeparated(*startPath)
		case "include":
			cfg.IncludePatterns = parseCommaSeparated(*includes)
		case "exclude":
			cfg.ExcludePatterns = parseCommaSeparated(*excludes)
		case "max-file-size":
			cfg.MaxFileSize = *maxFileSize
		case "concurrency":
			cfg.ConcurrencyLevel = *concurrency
			cfg.ConcurrencySet = true
		case "nice":
			cfg.NiceLevel = *nice
		case "log-level":
			cfg.LogLevel = *logLevel
		case "output":
			cfg.OutputFileName = *outputName
		case "max-io-per-second":
			cfg.MaxIOPerSecond = *maxIO
		case "hashes":
			cfg.HashAlgorithms = parseCommaSeparated(*hashes)
		case "baseline":
			cfg.BaselineFile = *baseline
		case "archetype":
			cfg.ArchetypeFile = *archetype
		case "diag-dir":
			cfg.DiagDir = *diagDir
		case "slow-ingest-threshold":
			cfg.SlowIngestThreshold = *slowIngestThreshold
		case "diag-goroutine-dump":
			cfg.DiagGoroutineDump = *diagGoroutineDump
		case "watch":
			cfg.Watch = *watch
		case "watch-debounce":
			cfg.WatchDebounce = *watchDebounce
		case "similarity":
			cfg.SimilarityScan = *similarity
		case "similarity-max-distance":
			cfg.SimilarityMaxDistance = *similarityMaxDistance
		case "otel-endpoint":
			cfg.OtelEndpoint = strings.TrimSpace(*otelEndpoint)
		case "otel-from-env":
			cfg.OtelFromEnv = *otelFromEnv
		case "otel-headers":
			cfg.OtelHeaders = parseHeaders(*otelHeaders)
		case "otel-service-name":
			cfg.OtelServiceName = strings.TrimSpace(*otelServiceName)
		case "otel-timeout":
			cfg.OtelTimeout = *otelTimeout
		}
	})

	if cfg.ArchetypeFile != "" {
		arch, err := LoadArchetype(cfg.ArchetypeFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplyArchetype(arch)
	}

	if len(cfg.StartPaths) == 0 {
		cfg.StartPaths = []string{"."}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayHelp() {
	fmt.Println("xfid - Cross-file pattern analysis")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  xfid [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  xfid --archetype node-fullstack.yaml --path \"./src\"")
	fmt.Println("  xfid --archetype rules.yaml --watch")
	fmt.Println("  xfid --similarity --path \"./src,./lib\"")
}

func (cfg *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	if _, ok := raw["concurrency_level"]; ok {
		cfg.ConcurrencySet = true
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid config file format: %v", err)
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.ConcurrencyLevel <= 0 {
		return fmt.Errorf("concurrency level must be positive")
	}
	if cfg.NiceLevel != "high" && cfg.NiceLevel != "medium" && cfg.NiceLevel != "low" {
		return fmt.Errorf("invalid nice level: %s", cfg.NiceLevel)
	}
	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" &&
		cfg.LogLevel != "error" && cfg.LogLevel != "fatal" && cfg.LogLevel != "panic" {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max-file-size must be zero or positive")
	}
	if cfg.MaxIOPerSecond < 0 {
		return fmt.Errorf("max-io-per-second must be zero or positive")
	}
	if cfg.WatchDebounce <= 0 {
		return fmt.Errorf("watch-debounce must be positive")
	}
	if cfg.SlowIngestThreshold < 0 {
		return fmt.Errorf("slow-ingest-threshold must be zero or positive")
	}
	if cfg.SimilarityMaxDistance < 0 {
		return fmt.Errorf("similarity-max-distance must be zero or positive")
	}
	if cfg.OtelTimeout < 0 {
		return fmt.Errorf("otel-timeout must be zero or positive")
	}
	if cfg.OtelEndpoint != "" &&
		!strings.HasPrefix(cfg.OtelEndpoint, "http://") && !strings.HasPrefix(cfg.OtelEndpoint, "https://") {
		return fmt.Errorf("otel-endpoint must include scheme (http or https)")
	}
	if len(cfg.Analyses) == 0 && !cfg.SimilarityScan {
		return fmt.Errorf("no analyses configured: provide --archetype, an analyses config section, or --similarity")
	}
	seen := make(map[string]bool, len(cfg.Analyses))
	for i := range cfg.Analyses {
		if err := cfg.Analyses[i].validate(); err != nil {
			return err
		}
		if seen[cfg.Analyses[i].ResultFact] {
			return fmt.Errorf("duplicate result fact: %s", cfg.Analyses[i].ResultFact)
		}
		seen[cfg.Analyses[i].ResultFact] = true
	}
	return nil
}

func (a *AnalysisConfig) validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("analysis name must not be empty")
	}
	if strings.TrimSpace(a.ResultFact) == "" {
		return fmt.Errorf("analysis %s: result_fact must not be empty", a.Name)
	}
	categorized := len(a.NewPatterns) > 0 || len(a.LegacyPatterns) > 0
	if len(a.Patterns) > 0 && categorized {
		return fmt.Errorf("analysis %s: patterns and new/legacy patterns are mutually exclusive", a.Name)
	}
	if a.FileFilter != "" {
		if _, err := regexp.Compile(a.FileFilter); err != nil {
			return fmt.Errorf("analysis %s: invalid file_filter: %v", a.Name, err)
		}
	}
	return nil
}

func parseCommaSeparated(input string) []string {
	if input == "" {
		return []string{}
	}
	items := strings.Split(input, ",")
	for i, item := range items {
		items[i] = strings.TrimSpace(item)
	}
	return items
}

func parseHeaders(input string) map[string]string {
	headers := make(map[string]string)
	if input == "" {
		return headers
	}
	for _, item := range strings.Split(input, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(parts[1])
	}
	return headers
}
