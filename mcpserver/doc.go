// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package exposes the questbox engine as MCP tools using the
// mark3labs/mcp-go library:
//
//   - run_game_code validates and executes a submission with its context
//     variables and returns the classified outcome as JSON.
//   - check_game_code runs the static validator only.
//   - recent_submissions lists the submission history.
//
// The server speaks stdio or streamable HTTP as configured.
//
// Usage:
//
//	srv, err := mcpserver.New(cfg, logger, eng, hist)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = srv.ServeStdio(ctx) // or srv.ServeHTTP()
package mcpserver
