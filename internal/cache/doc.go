// Package cache implements a content-addressed, time-limited result cache on
// the local filesystem.
//
// Entries are keyed by a digest of the analyzed image's raw bytes, never by
// its path, so byte-identical files under different names share one entry.
// Each entry is a single JSON file named <key>.json in the cache directory;
// its age is the file's modification time.
//
// # Staleness vs. Deletion
//
// Get applies the configured TTL as a read-time staleness filter: an expired
// entry is reported as a miss but left on disk. Physical deletion happens
// only through Prune (or by overwriting via Put), which keeps reads
// side-effect-free and lets operators control disk usage on their own
// schedule.
//
// # Failure Policy
//
// Read failures (missing files, unreadable files, corrupt JSON) degrade
// silently to a miss, since recomputing an analysis is always safe. Write and
// prune failures surface to the caller wrapped in ErrCacheIO.
//
// # Concurrency
//
// The cache holds no in-process state; concurrent workers may read and write
// freely. Writes go through a temp file and rename, so a reader never sees a
// partially written entry. Two workers writing the same key race benignly:
// the last writer wins, which is acceptable because analysis is deterministic
// for identical bytes.
package cache
