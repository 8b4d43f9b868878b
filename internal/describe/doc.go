// Package describe turns detected diagram elements into textual analysis
// documents.
//
// The composer aggregates element counts by kind, appends the spatial
// relation statements produced by the detection stage, and wraps the result
// in an AnalysisDocument together with structured metadata (element count,
// kind set, processing status).
//
// ProcessDiagram is the single-image pipeline entry point. It runs loading,
// preprocessing, detection, and relation annotation, and always returns a
// document: upstream failures are converted into an error-status document
// rather than propagated, so one bad image never takes down a batch.
package describe
