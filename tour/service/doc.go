// Package service provides the business logic layer for knight's tour sessions.
//
// The service package implements:
//   - Multi-session tour management
//   - Single, bulk and run-to-end stepping
//   - Candidate inspection and board rendering
//   - Move history tracking
//
// Core Interfaces:
//
// TourService is the main service interface providing high-level tour operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the tour engine. Each session owns its own engine; the service serializes
// access to them.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	tourService := service.NewTourService(sessionMgr, configMgr)
//
//	info, err := tourService.CreateSession(ctx, service.CreateOptions{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := tourService.Run(ctx, info.ID)
//
// A tour that gets stuck is a normal outcome reported through
// StopReasonCode, not an error.
package service
