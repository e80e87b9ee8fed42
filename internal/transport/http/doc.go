// Package http implements the HTTP handlers of the health-equity service.
//
// Handlers stay thin: they decode and validate the request, call the
// pipeline or health service, and render JSON with go-chi/render. Service
// sentinel errors are mapped to API errors in errors.go and rendered as
// RFC 7807 problem documents by the shared ErrorHandler.
//
// # Routes
//
//	GET    /api/health, /api/health/live, /api/health/stats
//	GET    /api/version
//	GET    /api/regions
//	POST   /api/pipeline/run
//	POST   /api/sessions
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/form
//	PUT    /api/sessions/{id}/page
//	POST   /api/sessions/{id}/uploads/{source}
//	PUT    /api/sessions/{id}/filters
//	GET    /api/sessions/{id}/years
//	GET    /api/sessions/{id}/result
//	GET    /api/sessions/{id}/export?table=unified|scored&format=csv|xlsx
//	GET    /api/sessions/{id}/events   (websocket)
//	POST   /api/client-log
//	GET    /api/metrics/websocket
//	GET    /metrics
//
// Uploads are multipart. Each file is capped by ingest.max_upload_bytes and
// held in memory.
package http
