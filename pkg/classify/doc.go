// Package classify tags requirement sentences with categories.
//
// Text is split into sentences by a [Segmenter] (by default the English Punkt
// tokenizer from github.com/neurosnap/sentences) and each sentence is matched
// case-insensitively against four fixed keyword sets:
//
//   - performance: speed, acceleration, time, performance, efficiency, throughput, response
//   - stability: balance, stability, control, reliability, robustness, consistent
//   - safety: safe, emergency, protect, security, privacy, backup
//   - verification: verify, validate, test, simulation, check, audit, monitor
//
// Matching is literal substring containment: "testing" matches "test" and
// "unsafe" matches "safe". A sentence may land in several categories.
//
// Classification never fails. Empty input yields a [CategoryMap] with all
// four categories present and empty.
package classify
