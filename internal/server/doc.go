// Package server provides the HTTP server for the validator service mode.
//
// The server uses the Gin web framework. Development mode (ServerMode =
// "dev") keeps Gin in debug mode; production mode (ServerMode = "prod")
// switches Gin to release mode. Both serve plain HTTP.
//
// # Server Lifecycle
//
// Creation:
//
//	srv, err := server.NewServer(cfg, func(router *gin.RouterGroup) {
//	    handlers.RegisterRoutes(router, handler)
//	})
//
// The registerHandlerFn callback receives a RouterGroup prefixed with /api/v1.
//
// Starting:
//
//	// Blocks until error or shutdown
//	err := srv.Start(ctx)
//
// Stopping:
//
//	srv.Stop(ctx)
//
// Stop performs a graceful shutdown, waiting up to ten seconds for
// in-flight requests to complete.
//
// # Middleware
//
// The server applies two middleware to all routes:
//
// Logger Middleware (middlewares.Logger):
//   - Logs request start: method, path, query, IP, user-agent
//   - Logs request end: all above + status code, latency
//   - Uses zap structured logging with the "http" logger name
//
// Recovery Middleware (ginzap.RecoveryWithZap):
//   - Recovers from panics in handlers
//   - Logs panic details with stack trace
//   - Returns 500 Internal Server Error
//
// Unknown routes return a JSON 404 body instead of Gin's default empty
// response.
package server
