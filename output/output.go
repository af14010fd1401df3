package output

import (
	"bufio"
	"fmt"
	"os"
	"sync"

	"xfid/config"
	"xfid/logger"
	"xfid/systeminfo"
)

const SchemaVersion = "1.0"

// Metrics covers one analysis run.
type Metrics struct {
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	TotalFiles    int    `json:"total_files"`
	FilesIngested int    `json:"files_ingested"`
	AnalysesRun   int    `json:"analyses_run"`
	TotalMatches  int    `json:"total_matches"`
}

// AnalysisRecord is one analysis result as it appears in the report.
type AnalysisRecord struct {
	Name       string      `json:"name"`
	ResultFact string      `json:"result_fact,omitempty"`
	Result     interface{} `json:"result"`
}

// Writer assembles the JSON report incrementally so analysis results land on
// disk as they complete. The report shape is:
//
//	{ "schema_version": ..., "system_info": ..., "analyses": [...], "metrics": ... }
type Writer struct {
	file    *os.File
	buf     *bufio.Writer
	mu      sync.Mutex
	first   bool
	metrics *Metrics
	sysInfo *systeminfo.SystemInfo
	otel    *otelLogger
	name    string
}

func New(cfg *config.Config, sysInfo *systeminfo.SystemInfo, m *Metrics) (*Writer, error) {
	if sysInfo == nil {
		sysInfo = &systeminfo.SystemInfo{}
	}
	w := &Writer{
		first:   true,
		metrics: m,
		sysInfo: sysInfo,
		name:    cfg.OutputFileName,
	}
	otel, err := newOtelLogger(cfg)
	if err != nil {
		logger.Warnf("OTEL export disabled: %v", err)
	} else {
		w.otel = otel
	}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	w.emitRecord("system_info", w.sysInfo)
	return w, nil
}

func (w *Writer) openFile() error {
	f, err := os.OpenFile(w.name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	w.file = f
	w.buf = bufio.NewWriterSize(f, 1024*1024)
	w.first = true

	if _, err := w.buf.WriteString("{\n"); err != nil {
		return err
	}
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *Writer) writeHeader() error {
	if _, err := w.buf.WriteString(fmt.Sprintf("  \"schema_version\": %q,\n", SchemaVersion)); err != nil {
		return err
	}
	sysBytes, err := jsonMarshalIndent(w.sysInfo, "  ", "  ")
	if err != nil {
		return err
	}
	if _, err := w.buf.WriteString("  \"system_info\": "); err != nil {
		return err
	}
	if _, err := w.buf.Write(sysBytes); err != nil {
		return err
	}
	if _, err := w.buf.WriteString(",\n  \"analyses\": [\n"); err != nil {
		return err
	}
	return nil
}

// WriteAnalysis appends one analysis result to the report and exports it.
func (w *Writer) WriteAnalysis(record AnalysisRecord) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.first {
		_, _ = w.buf.WriteString(",\n")
	}
	bytes, err := jsonMarshalIndent(record, "    ", "  ")
	if err == nil {
		_, _ = w.buf.WriteString("    ")
		_, _ = w.buf.Write(bytes)
	}
	w.first = false
	if w.metrics != nil {
		w.metrics.AnalysesRun++
	}
	w.emitRecord("analysis", record)
	_ = w.buf.Flush()
}

func (w *Writer) SetMetrics(m Metrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.metrics = &m
}

func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.metrics != nil {
		w.emitRecord("metrics", w.metrics)
	}
	w.closeFile()
	if w.otel != nil {
		w.otel.Shutdown()
	}
}

func (w *Writer) closeFile() {
	_, _ = w.buf.WriteString("\n  ]")
	if w.metrics != nil {
		mBytes, err := jsonMarshalIndent(w.metrics, "  ", "  ")
		if err == nil {
			_, _ = w.buf.WriteString(",\n  \"metrics\": ")
			_, _ = w.buf.Write(mBytes)
		}
	}
	_, _ = w.buf.WriteString("\n}\n")
	_ = w.buf.Flush()
	_ = w.file.Sync()
	_ = w.file.Close()
}

func (w *Writer) emitRecord(recordType string, payload interface{}) {
	if w.otel == nil {
		return
	}
	w.otel.Emit(recordType, payload)
}
