// Package batch schedules image analysis over a bounded worker pool with a
// content-addressed cache in front of the analysis function.
//
// The scheduler partitions the input paths into fixed-size groups and
// processes each group's items concurrently, with global concurrency bounded
// by the worker limit regardless of group structure. For every item it hashes
// the file's bytes, consults the cache, and only invokes the analysis
// function on a miss, storing the result afterwards.
//
// # Error Isolation
//
// Each item succeeds or fails on its own. Failures such as unreadable files
// or analysis errors are reported inline in the item's result
// and never abort the remainder of the batch. Cache write failures are
// logged and swallowed; the freshly computed result is still returned.
//
// # Ordering
//
// Completion order within a group is unspecified, but results are
// reassembled into the original input order before being returned. The i-th
// result always corresponds to the i-th input path.
//
// # Shared State
//
// The cache directory is the only shared mutable resource. Two workers given
// byte-identical files in one batch may both miss and both analyze; the
// second write wins, which is benign because the analysis function is
// required to be a pure function of the file's bytes.
package batch
