// Package session provides session management for knight's tour runs.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short session IDs derived from random UUIDs
//   - File-backed persistence of tour state
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own tour engine together with the board
// configuration and its access timestamps.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", "classic", boardConfig, service.CreateOptions{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Cleanup:
//
// CleanupExpiredSessions evicts idle sessions from memory only; a persisted
// session is reloaded from disk the next time it is requested.
package session
