// Package services holds the business logic between the HTTP handlers and
// the pipeline.
//
// SessionStore keeps one Session per visitor. A Session is the explicit
// replacement for page-level globals: it tracks whether the access form was
// submitted, the active page, the latest upload per source, the current
// selection and the last pipeline result. Transitions are form-submit,
// file-select (full pipeline re-run, selection reset) and filter-change
// (filter re-applied to the last result).
//
// PipelineService drives those transitions, records metrics and publishes a
// snapshot to the SessionPublisher after each one. Handlers map the sentinel
// errors in errors.go to HTTP problems.
//
// HealthService reports liveness, readiness and runtime stats.
package services
