package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"xfid/config"
	"xfid/logger"
	"xfid/systeminfo"
)

func init() {
	logger.Init("error")
}

func TestWriterProducesValidReport(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "report.json")
	cfg := &config.Config{OutputFileName: name}
	metrics := &Metrics{StartTime: "2026-01-01T00:00:00Z", TotalFiles: 2}

	w, err := New(cfg, &systeminfo.SystemInfo{Hostname: "testhost", OS: "linux"}, metrics)
	if err != nil {
		t.Fatalf("new writer failed: %v", err)
	}
	w.WriteAnalysis(AnalysisRecord{
		Name:       "apiUsage",
		ResultFact: "apiAnalysis",
		Result:     map[string]interface{}{"matchCounts": map[string]int{"foo": 3}},
	})
	w.WriteAnalysis(AnalysisRecord{
		Name:   "dupes",
		Result: map[string]interface{}{"pairs": []string{}},
	})
	metrics.EndTime = "2026-01-01T00:00:05Z"
	w.Close()

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read report failed: %v", err)
	}
	var report struct {
		SchemaVersion string `json:"schema_version"`
		SystemInfo    struct {
			Hostname string `json:"hostname"`
		} `json:"system_info"`
		Analyses []AnalysisRecord `json:"analyses"`
		Metrics  Metrics          `json:"metrics"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, data)
	}
	if report.SchemaVersion != SchemaVersion {
		t.Fatalf("schema_version = %q", report.SchemaVersion)
	}
	if report.SystemInfo.Hostname != "testhost" {
		t.Fatalf("hostname = %q", report.SystemInfo.Hostname)
	}
	if len(report.Analyses) != 2 {
		t.Fatalf("analyses = %d", len(report.Analyses))
	}
	if report.Analyses[0].Name != "apiUsage" || report.Analyses[0].ResultFact != "apiAnalysis" {
		t.Fatalf("first analysis = %+v", report.Analyses[0])
	}
	if report.Metrics.AnalysesRun != 2 {
		t.Fatalf("analyses_run = %d", report.Metrics.AnalysesRun)
	}
	if report.Metrics.EndTime != "2026-01-01T00:00:05Z" {
		t.Fatalf("end_time = %q", report.Metrics.EndTime)
	}
}

func TestWriterEmptyAnalyses(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "empty.json")
	cfg := &config.Config{OutputFileName: name}

	w, err := New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new writer failed: %v", err)
	}
	w.Close()

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read report failed: %v", err)
	}
	var report map[string]interface{}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, data)
	}
	if _, ok := report["metrics"]; ok {
		t.Fatal("metrics should be absent when never set")
	}
}

func TestResolveOtelEndpoint(t *testing.T) {
	if got := resolveOtelEndpoint(nil); got != "" {
		t.Fatalf("nil config endpoint = %q", got)
	}
	cfg := &config.Config{OtelEndpoint: " http://collector:4318 "}
	if got := resolveOtelEndpoint(cfg); got != "http://collector:4318" {
		t.Fatalf("endpoint = %q", got)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT", "http://env-logs:4318")
	cfg = &config.Config{OtelFromEnv: true}
	if got := resolveOtelEndpoint(cfg); got != "http://env-logs:4318" {
		t.Fatalf("env endpoint = %q", got)
	}

	cfg = &config.Config{}
	if got := resolveOtelEndpoint(cfg); got != "" {
		t.Fatalf("env fallback without opt-in = %q", got)
	}
}

func TestOtelDisabledWithoutEndpoint(t *testing.T) {
	otel, err := newOtelLogger(&config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if otel != nil {
		t.Fatal("expected nil logger without endpoint")
	}
	otel.Emit("analysis", nil)
	otel.Shutdown()
}

func TestOtelRejectsSchemelessEndpoint(t *testing.T) {
	_, err := newOtelLogger(&config.Config{OtelEndpoint: "collector:4318"})
	if err == nil {
		t.Fatal("expected scheme error")
	}
}
