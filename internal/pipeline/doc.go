// Package pipeline provides a framework for executing export steps in sequence.
//
// The pipeline pattern is used to take a tournament through multiple
// stages: schedule rendering, event page rendering, results extraction,
// pool extraction, bracket extraction, CSV writing, and history
// persistence. Each stage is implemented as a Step that receives the
// accumulated report and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of stages without modifying core logic
// 2. It provides consistent error handling and logging across stages
// 3. It supports cancellation via context for long-running exports
// 4. Commands select stages (results, pools, tableau) by composition
//
// The pipeline supports both individual exports and batch processing with
// concurrency control using errgroup.
package pipeline
