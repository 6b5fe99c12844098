package session

import (
	"testing"
	"time"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence)
	boardConfig := configManager.GetDefault()

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", "classic", boardConfig, startAt(0, 0))
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}

		loaded, err := persistence.Load(session.ID)
		if err != nil {
			t.Fatalf("Failed to load auto-saved session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(persistence)

		session, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if session.ID != "auto1" {
			t.Errorf("Expected ID auto1, got %s", session.ID)
		}

		if !manager2.Exists("auto1") {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, err := manager.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		moves := session.Engine.BulkStep(4)
		if len(moves) != 4 {
			t.Fatalf("Expected 4 moves from the corner, got %d", len(moves))
		}

		if err := manager.Save("auto1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager3 := NewManagerWithPersistence(persistence)
		loaded, err := manager3.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to load session after manual save: %v", err)
		}

		if loaded.Engine.GetPosition() != moves[3].To {
			t.Error("Knight position should be persisted")
		}
		if len(loaded.Engine.GetMoveHistory()) != 4 {
			t.Errorf("Expected 4 persisted moves, got %d", len(loaded.Engine.GetMoveHistory()))
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		session, err := manager.Create("delete_test", "classic", boardConfig, seeded(9))
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(session.ID) {
			t.Error("Session should exist in persistence")
		}

		if err := manager.Delete(session.ID); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists(session.ID) {
			t.Error("Session should be removed from persistence on delete")
		}
		if _, err := manager.Get(session.ID); err == nil {
			t.Error("Should not be able to get deleted session")
		}
	})

	t.Run("Expired Sessions Reload From Disk", func(t *testing.T) {
		session, err := manager.Create("expiring", "classic", boardConfig, seeded(5))
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		session.LastAccessedAt = time.Now().Add(-time.Hour)

		if removed := manager.CleanupExpiredSessions(time.Minute); removed < 1 {
			t.Fatalf("Expected the expired session to be evicted, removed %d", removed)
		}
		if manager.Exists("expiring") {
			t.Fatal("Expected session to be evicted from memory")
		}

		if _, err := manager.Get("expiring"); err != nil {
			t.Errorf("Expected evicted session to reload from disk: %v", err)
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		ids := []string{"startup1", "startup2", "startup3"}
		for _, id := range ids {
			if _, err := manager.Create(id, "classic", boardConfig, seeded(1)); err != nil {
				t.Fatalf("Failed to create session %s: %v", id, err)
			}
		}

		manager4 := NewManagerWithPersistence(persistence)
		if err := manager4.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}

		for _, id := range ids {
			if !manager4.Exists(id) {
				t.Errorf("Session %s not loaded on startup", id)
			}
		}
		if manager4.Count() < len(ids) {
			t.Errorf("Expected at least %d sessions, got %d", len(ids), manager4.Count())
		}
	})

	t.Run("Save All Sessions", func(t *testing.T) {
		session, err := manager.Get("startup1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		session.Engine.Run()

		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("Failed to save all sessions: %v", err)
		}

		loaded, err := persistence.Load("startup1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if !loaded.Engine.IsFinished() {
			t.Error("Expected finished tour to be persisted")
		}
	})
}

func TestManagerWithoutPersistence(t *testing.T) {
	manager := NewManager()

	if err := manager.Save("anything"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
}
