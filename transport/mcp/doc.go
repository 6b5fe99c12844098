// Package mcp exposes knight's tours to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call is translated into a request
// against the REST API in package api and the JSON response is formatted
// as text for the agent.
//
// MCP Tools:
//   - create_tour, list_tours, get_tour: tour sessions
//   - tour_state: rendered board with visit order
//   - step, bulk_step, run_tour, reset_tour: drive a tour
//   - move_history: paginated moves
//   - candidates: Warnsdorff scores for the next move
//   - list_configs: board configurations
//   - tour_instructions: rules and board notation
//   - describe_square: label, algebraic name and onward moves of a square
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// The same server also answers JSON-RPC messages posted to /mcp on the HTTP
// server.
package mcp
