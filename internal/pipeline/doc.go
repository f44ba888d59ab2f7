// Package pipeline provides a framework for converting sslscan documents in
// a sequence of steps.
//
// Each input file (or stdin) becomes a Job that passes through the steps of
// a Pipeline: read the raw bytes, decode the XML, normalize the entries into
// a report, drop ignored hosts, and store the report in the history
// database. Each step is implemented as a Step that receives the Job and
// can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context
//
// Several inputs are converted concurrently by a BatchProcessor, which keeps
// results in argument order and isolates one input's failure from the others.
package pipeline
