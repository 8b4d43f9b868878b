// Package ocr provides a text-extraction collaborator for the batch engine.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) behind the
// narrow collaborator contract the batch scheduler consumes: analyze a file
// path, return an opaque serialized payload. The structural diagram pipeline
// knows nothing about OCR; callers choose at wiring time whether a batch runs
// shape analysis or text extraction.
//
// # Prerequisites
//
// Tesseract must be installed on the system together with language data for
// the requested language (default English, "eng"):
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Error Handling
//
// Extraction failures (missing image, engine initialization problems) are
// returned as ordinary errors; when used through Analyzer they surface as
// per-item batch errors without aborting the rest of the batch.
package ocr
