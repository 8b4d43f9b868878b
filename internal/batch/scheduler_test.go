package batch

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pauloheck/diagram-tools/internal/cache"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestProcessor(t *testing.T, analyze AnalyzeFunc, cfg Config) *Processor {
	t.Helper()

	c, err := cache.New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("cache.New failed: %v", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	return NewProcessor(c, analyze, cfg)
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestProcessBatch_OrderAndIsolation(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.png", "image a")
	b := writeTestFile(t, dir, "b.png", "image b")
	c := writeTestFile(t, dir, "c.png", "image c")

	analyze := func(path string) (any, error) {
		if strings.HasSuffix(path, "b.png") {
			return nil, errors.New("unreadable diagram")
		}
		return map[string]string{"source": filepath.Base(path)}, nil
	}
	p := newTestProcessor(t, analyze, Config{})

	results := p.ProcessBatch([]string{a, b, c})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, path := range []string{a, b, c} {
		if results[i].Path != path {
			t.Errorf("result %d: got path %s, want %s", i, results[i].Path, path)
		}
	}
	if results[0].Err != "" || results[2].Err != "" {
		t.Error("healthy items must not inherit a sibling's failure")
	}
	if results[1].Err == "" {
		t.Error("failing item should carry its error")
	}
	if results[1].Payload != nil {
		t.Error("failing item should carry no payload")
	}
}

func TestProcessBatch_CacheHitSkipsAnalysis(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "a.png", "cached image")

	var invocations atomic.Int64
	analyze := func(string) (any, error) {
		invocations.Add(1)
		return "analysis", nil
	}
	p := newTestProcessor(t, analyze, Config{})

	first := p.ProcessBatch([]string{path})
	second := p.ProcessBatch([]string{path})

	if invocations.Load() != 1 {
		t.Errorf("analysis invocations: got %d, want 1", invocations.Load())
	}
	if string(first[0].Payload) != string(second[0].Payload) {
		t.Errorf("cached payload differs: %s vs %s", first[0].Payload, second[0].Payload)
	}
	if string(second[0].Payload) != `"analysis"` {
		t.Errorf("replayed payload: got %s, want %q", second[0].Payload, `"analysis"`)
	}
}

func TestProcessBatch_ContentAddressing(t *testing.T) {
	dir := t.TempDir()
	original := writeTestFile(t, dir, "original.png", "identical bytes")

	var invocations atomic.Int64
	analyze := func(string) (any, error) {
		invocations.Add(1)
		return "shared result", nil
	}
	p := newTestProcessor(t, analyze, Config{})

	p.ProcessBatch([]string{original})

	// A byte-identical copy under another name must replay the same entry.
	duplicate := writeTestFile(t, dir, "duplicate.png", "identical bytes")
	results := p.ProcessBatch([]string{duplicate})

	if invocations.Load() != 1 {
		t.Errorf("analysis invocations: got %d, want 1", invocations.Load())
	}
	if string(results[0].Payload) != `"shared result"` {
		t.Errorf("duplicate payload: got %s", results[0].Payload)
	}
}

func TestProcessBatch_MissingFile(t *testing.T) {
	p := newTestProcessor(t, func(string) (any, error) {
		t.Error("analysis must not run when hashing fails")
		return nil, nil
	}, Config{})

	results := p.ProcessBatch([]string{filepath.Join(t.TempDir(), "absent.png")})

	if len(results) != 1 || results[0].Err == "" {
		t.Fatalf("expected hashing failure in result, got %+v", results)
	}
}

func TestProcessBatch_WorkerBound(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 10)
	for i := range paths {
		paths[i] = writeTestFile(t, dir, "img-"+string(rune('a'+i))+".png", strings.Repeat("x", i+1))
	}

	var mu sync.Mutex
	active, peak := 0, 0
	analyze := func(string) (any, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return "ok", nil
	}
	p := newTestProcessor(t, analyze, Config{BatchSize: 10, MaxWorkers: 2})

	results := p.ProcessBatch(paths)

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Err != "" {
			t.Errorf("result %d failed: %s", i, r.Err)
		}
	}
	if peak > 2 {
		t.Errorf("concurrent analyses: peaked at %d, limit is 2", peak)
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	p := newTestProcessor(t, func(string) (any, error) { return nil, nil }, Config{})

	results := p.ProcessBatch(nil)
	if results == nil {
		t.Fatal("ProcessBatch should return an empty slice, not nil")
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestNewProcessor_Defaults(t *testing.T) {
	p := newTestProcessor(t, func(string) (any, error) { return nil, nil }, Config{})

	if p.batchSize != DefaultBatchSize {
		t.Errorf("batch size: got %d, want %d", p.batchSize, DefaultBatchSize)
	}
	if p.maxWorkers != DefaultMaxWorkers {
		t.Errorf("max workers: got %d, want %d", p.maxWorkers, DefaultMaxWorkers)
	}
	if p.logger == nil {
		t.Error("logger should be defaulted, not nil")
	}
}
