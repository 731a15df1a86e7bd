package prometheus

import "time"

// ChemistryMetrics holds the metric families recorded by the CML service,
// the part store, the cache and the editing session.
type ChemistryMetrics struct {
	// CML codec
	ImportsTotal      CounterVec
	ImportDuration    HistogramVec
	ImportDiagnostics CounterVec
	ExportsTotal      CounterVec
	ExportDuration    HistogramVec
	DocumentSize      HistogramVec
	DocumentAtoms     HistogramVec

	// Part storage and cache
	StoreOpsTotal    CounterVec
	StoreDuration    HistogramVec
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec

	// Telemetry
	TelemetryEventsTotal CounterVec

	// Editing session
	EditsTotal CounterVec
	UndoDepth  GaugeVec

	// Watch
	WatchEventsTotal CounterVec

	ErrorsTotal CounterVec
}

// Default buckets.
var (
	DefaultCodecDurationBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultStoreDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultSizeBuckets          = []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}
	DefaultAtomCountBuckets     = []float64{1, 10, 25, 50, 100, 250, 500, 1000, 5000}
)

// NewChemistryMetrics registers every family on collector.
func NewChemistryMetrics(collector MetricsCollector) *ChemistryMetrics {
	m := &ChemistryMetrics{}

	m.ImportsTotal = collector.RegisterCounter("cml_imports_total", "CML documents imported", "status")
	m.ImportDuration = collector.RegisterHistogram("cml_import_duration_seconds", "CML import duration", DefaultCodecDurationBuckets)
	m.ImportDiagnostics = collector.RegisterCounter("cml_import_diagnostics_total", "Diagnostics recorded while importing", "severity")
	m.ExportsTotal = collector.RegisterCounter("cml_exports_total", "CML documents exported", "status")
	m.ExportDuration = collector.RegisterHistogram("cml_export_duration_seconds", "CML export duration", DefaultCodecDurationBuckets)
	m.DocumentSize = collector.RegisterHistogram("cml_document_size_bytes", "CML document size", DefaultSizeBuckets, "direction")
	m.DocumentAtoms = collector.RegisterHistogram("cml_document_atoms", "Atoms per document", DefaultAtomCountBuckets, "direction")

	m.StoreOpsTotal = collector.RegisterCounter("part_store_operations_total", "Part store operations", "operation", "status")
	m.StoreDuration = collector.RegisterHistogram("part_store_duration_seconds", "Part store operation duration", DefaultStoreDurationBuckets, "operation")
	m.CacheHitsTotal = collector.RegisterCounter("part_cache_hits_total", "Part cache hits")
	m.CacheMissesTotal = collector.RegisterCounter("part_cache_misses_total", "Part cache misses")

	m.TelemetryEventsTotal = collector.RegisterCounter("telemetry_events_total", "Telemetry events emitted", "level", "status")

	m.EditsTotal = collector.RegisterCounter("session_edits_total", "Editing operations applied", "operation")
	m.UndoDepth = collector.RegisterGauge("session_undo_depth", "Snapshots on the undo and redo stacks", "stack")

	m.WatchEventsTotal = collector.RegisterCounter("watch_events_total", "Files processed by the watcher", "status")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// NewNoopChemistryMetrics returns families that discard every observation.
func NewNoopChemistryMetrics() *ChemistryMetrics {
	c, h, g := noopCounterVec{}, noopHistogramVec{}, noopGaugeVec{}
	return &ChemistryMetrics{
		ImportsTotal:         c,
		ImportDuration:       h,
		ImportDiagnostics:    c,
		ExportsTotal:         c,
		ExportDuration:       h,
		DocumentSize:         h,
		DocumentAtoms:        h,
		StoreOpsTotal:        c,
		StoreDuration:        h,
		CacheHitsTotal:       c,
		CacheMissesTotal:     c,
		TelemetryEventsTotal: c,
		EditsTotal:           c,
		UndoDepth:            g,
		WatchEventsTotal:     c,
		ErrorsTotal:          c,
	}
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordImport records one Import call.
func RecordImport(m *ChemistryMetrics, size int, atoms, errs, warnings int, duration time.Duration, err error) {
	m.ImportsTotal.WithLabelValues(status(err)).Inc()
	m.ImportDuration.WithLabelValues().Observe(duration.Seconds())
	m.DocumentSize.WithLabelValues("import").Observe(float64(size))
	if err != nil {
		return
	}
	m.DocumentAtoms.WithLabelValues("import").Observe(float64(atoms))
	m.ImportDiagnostics.WithLabelValues("error").Add(float64(errs))
	m.ImportDiagnostics.WithLabelValues("warning").Add(float64(warnings))
}

// RecordExport records one Export call.
func RecordExport(m *ChemistryMetrics, size, atoms int, duration time.Duration, err error) {
	m.ExportsTotal.WithLabelValues(status(err)).Inc()
	m.ExportDuration.WithLabelValues().Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.DocumentSize.WithLabelValues("export").Observe(float64(size))
	m.DocumentAtoms.WithLabelValues("export").Observe(float64(atoms))
}

// RecordStoreOp records one part store call.
func RecordStoreOp(m *ChemistryMetrics, operation string, duration time.Duration, err error) {
	m.StoreOpsTotal.WithLabelValues(operation, status(err)).Inc()
	m.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheAccess counts a cache hit or miss.
func RecordCacheAccess(m *ChemistryMetrics, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues().Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues().Inc()
	}
}

// RecordTelemetry counts one telemetry event.
func RecordTelemetry(m *ChemistryMetrics, level string, err error) {
	m.TelemetryEventsTotal.WithLabelValues(level, status(err)).Inc()
}

// RecordEdit counts one session operation and publishes the stack depths.
func RecordEdit(m *ChemistryMetrics, operation string, undoDepth, redoDepth int) {
	m.EditsTotal.WithLabelValues(operation).Inc()
	m.UndoDepth.WithLabelValues("undo").Set(float64(undoDepth))
	m.UndoDepth.WithLabelValues("redo").Set(float64(redoDepth))
}

// RecordWatchEvent counts one file handled by the watcher.
func RecordWatchEvent(m *ChemistryMetrics, err error) {
	m.WatchEventsTotal.WithLabelValues(status(err)).Inc()
}

// RecordError counts an error by component and error code.
func RecordError(m *ChemistryMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
