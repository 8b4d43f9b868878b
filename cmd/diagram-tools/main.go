package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/pauloheck/diagram-tools/internal/batch"
	"github.com/pauloheck/diagram-tools/internal/cache"
	"github.com/pauloheck/diagram-tools/internal/describe"
	"github.com/pauloheck/diagram-tools/internal/ocr"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("diagram-tools %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	logger := newLogger()

	var err error
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "analyze":
		err = runAnalyze(args)
	case "batch":
		err = runBatch(logger, args, func(path string) (any, error) {
			return describe.ProcessDiagram(path), nil
		})
	case "ocr":
		err = runBatch(logger, args, ocr.Analyzer(os.Getenv("DIAGRAM_OCR_LANG")))
	case "prune":
		err = runPrune(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal(err)
	}
}

// runAnalyze processes each image through the structural pipeline directly,
// bypassing the cache, and prints one document per image.
func runAnalyze(paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("analyze: at least one image path required")
	}
	for _, path := range paths {
		doc := describe.ProcessDiagram(path)
		if err := printJSON(doc); err != nil {
			return err
		}
	}
	return nil
}

// runBatch feeds the paths through the cache-aware batch scheduler using the
// supplied analysis function and prints the ordered result list.
func runBatch(logger *logrus.Logger, paths []string, analyze batch.AnalyzeFunc) error {
	if len(paths) == 0 {
		return fmt.Errorf("batch: at least one image path required")
	}

	c, err := openCache()
	if err != nil {
		return err
	}

	processor := batch.NewProcessor(c, analyze, batch.Config{
		BatchSize:  envInt("DIAGRAM_BATCH_SIZE", batch.DefaultBatchSize),
		MaxWorkers: envInt("DIAGRAM_MAX_WORKERS", batch.DefaultMaxWorkers),
		Logger:     logger,
	})
	return printJSON(processor.ProcessBatch(paths))
}

// runPrune deletes cache entries, optionally only those older than the given
// number of hours.
func runPrune(args []string) error {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	olderThanHours := fs.Int("older-than-hours", -1, "Only delete entries older than this many hours (default: all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, err := openCache()
	if err != nil {
		return err
	}

	var olderThan *time.Duration
	if *olderThanHours >= 0 {
		d := time.Duration(*olderThanHours) * time.Hour
		olderThan = &d
	}
	return c.Prune(olderThan)
}

func openCache() (*cache.Cache, error) {
	dir := os.Getenv("DIAGRAM_CACHE_DIR")
	if dir == "" {
		dir = ".image_cache"
	}
	ttl := time.Duration(envInt("DIAGRAM_CACHE_TTL_HOURS", 24)) * time.Hour
	return cache.New(dir, ttl)
}

// newLogger configures logging to stderr so stdout stays reserved for the
// JSON results.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(os.Getenv("DIAGRAM_LOG_LEVEL")); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func usage() {
	fmt.Println("diagram-tools - structural analysis of diagram images")
	fmt.Println()
	fmt.Println("Usage: diagram-tools <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze <image...>   Analyze images and print one document per image")
	fmt.Println("  batch <image...>     Analyze images through the cache-aware batch engine")
	fmt.Println("  ocr <image...>       Extract text from images through the batch engine")
	fmt.Println("  prune [-older-than-hours N]")
	fmt.Println("                       Delete cache entries (all, or older than N hours)")
	fmt.Println("  version              Print version information")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DIAGRAM_CACHE_DIR        Cache directory (default .image_cache)")
	fmt.Println("  DIAGRAM_CACHE_TTL_HOURS  Cache entry lifetime in hours (default 24)")
	fmt.Println("  DIAGRAM_BATCH_SIZE       Items per scheduling group (default 4)")
	fmt.Println("  DIAGRAM_MAX_WORKERS      Concurrent analysis bound (default 4)")
	fmt.Println("  DIAGRAM_OCR_LANG         Tesseract language code (default eng)")
	fmt.Println("  DIAGRAM_LOG_LEVEL        Log level (debug, info, warn, error)")
	fmt.Println()
	fmt.Println("Variables may also be provided via a .env file in the working directory.")
}
