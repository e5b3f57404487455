// Package httpapi exposes the questbox engine over a small JSON REST API.
//
// Routes:
//
//	POST /v1/execute      run a submission: {"code": "...", "context": {...}}
//	POST /v1/validate     static check only: {"code": "..."}
//	GET  /v1/stats        execution counters
//	GET  /v1/submissions  recent submissions (?limit=N)
//	GET  /healthz         liveness
//
// When an MCP handler is supplied it is mounted at /mcp.
package httpapi
