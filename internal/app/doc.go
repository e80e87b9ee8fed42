// Package app wires configuration, telemetry, the session service, the
// websocket hub and the HTTP router into one Application and owns its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config.yaml and DSBI_* variables
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the session store, pipeline service and websocket hub
//	4. Build the chi router and the HTTP server
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return a.ListenAndServe()
//
// # Graceful Shutdown
//
// Run drives the HTTP server and the idle-session sweeper in one errgroup.
// When the context is cancelled (SIGINT or SIGTERM under ListenAndServe) or
// the listener fails, the server drains in-flight requests, websocket
// clients are disconnected and telemetry is flushed.
//
// The app does not call os.Exit; the caller decides the exit code.
package app
