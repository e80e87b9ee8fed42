// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage provides a capturing slog handler with log
// assertions and the small vital statistics and shortage fixtures used
// across the pipeline, service and command tests.
package shared
