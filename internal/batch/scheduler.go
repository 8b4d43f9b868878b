package batch

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pauloheck/diagram-tools/internal/cache"
)

// Defaults applied by NewProcessor when the config leaves a field zero.
const (
	DefaultBatchSize  = 4
	DefaultMaxWorkers = 4
)

// AnalyzeFunc analyzes one image and returns a JSON-serializable payload.
//
// For cache correctness the function must be a pure function of the file's
// byte content: given identical bytes it must produce an equivalent payload.
// The diagram pipeline satisfies this; so must any external collaborator
// (e.g., a captioning function) plugged in here.
type AnalyzeFunc func(path string) (any, error)

// Result is the outcome for a single path in a batch.
//
// Exactly one of Payload and Err is set. Payload holds the serialized
// analysis result, either freshly computed or replayed from the cache.
type Result struct {
	Path    string          `json:"path"`
	Payload json.RawMessage `json:"result,omitempty"`
	Err     string          `json:"error,omitempty"`
}

// Config tunes a Processor. Zero fields fall back to defaults.
type Config struct {
	// BatchSize is the number of items dispatched per group.
	BatchSize int

	// MaxWorkers bounds concurrent analysis invocations globally.
	MaxWorkers int

	// Logger receives per-item and per-batch progress. A nil logger is
	// replaced with a default logrus logger.
	Logger *logrus.Logger
}

// Processor runs batches of image analyses against a shared cache.
//
// A Processor is safe for concurrent use; it holds no per-batch state.
type Processor struct {
	cache      *cache.Cache
	analyze    AnalyzeFunc
	batchSize  int
	maxWorkers int
	logger     *logrus.Logger
}

// NewProcessor builds a Processor around a cache and an analysis function.
func NewProcessor(c *cache.Cache, analyze AnalyzeFunc, cfg Config) *Processor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Processor{
		cache:      c,
		analyze:    analyze,
		batchSize:  cfg.BatchSize,
		maxWorkers: cfg.MaxWorkers,
		logger:     cfg.Logger,
	}
}

// ProcessBatch analyzes every path and returns one result per path, in the
// input order.
//
// Paths are partitioned into groups of the configured batch size; groups run
// sequentially while items within a group run concurrently, bounded by the
// worker limit. Every worker started for a group is drained before the next
// group begins, so no work outlives the call.
//
// Per-item failures are captured in the item's Result and never abort the
// batch. ProcessBatch itself does not fail.
func (p *Processor) ProcessBatch(paths []string) []Result {
	jobID := uuid.New().String()
	log := p.logger.WithFields(logrus.Fields{
		"job_id":      jobID,
		"image_count": len(paths),
	})
	log.Info("starting batch processing")

	results := make([]Result, len(paths))
	sem := make(chan struct{}, p.maxWorkers)

	for start := 0; start < len(paths); start += p.batchSize {
		end := start + p.batchSize
		if end > len(paths) {
			end = len(paths)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i] = p.processOne(paths[i])
			}(i)
		}
		wg.Wait()
	}

	log.Info("batch processing completed")
	return results
}

// processOne runs the cache-then-analyze sequence for a single path.
func (p *Processor) processOne(path string) Result {
	key, err := cache.KeyFile(path)
	if err != nil {
		p.logger.WithError(err).WithField("path", path).Error("failed to hash image")
		return Result{Path: path, Err: err.Error()}
	}

	if payload, ok := p.cache.Get(key); ok {
		p.logger.WithFields(logrus.Fields{"path": path, "key": key}).Debug("cache hit")
		return Result{Path: path, Payload: payload}
	}

	out, err := p.analyze(path)
	if err != nil {
		p.logger.WithError(err).WithField("path", path).Error("analysis failed")
		return Result{Path: path, Err: err.Error()}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		err = fmt.Errorf("encoding analysis result for %s: %w", path, err)
		p.logger.WithError(err).WithField("path", path).Error("analysis result not serializable")
		return Result{Path: path, Err: err.Error()}
	}

	// A failed cache write costs a recomputation later, not the result now.
	if err := p.cache.Put(key, json.RawMessage(payload)); err != nil {
		p.logger.WithError(err).WithField("key", key).Warn("failed to cache analysis result")
	}
	return Result{Path: path, Payload: payload}
}
