package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"driver-portal-api-server/internal/models"
)

func tokenExpiringAt(at time.Time) models.AuthToken {
	return models.AuthToken{
		Token:     "opaque-token",
		User:      models.AdminUser{ID: "adm-1", Email: "admin@portal.test", FullName: "Portal Admin"},
		ExpiresAt: at.UnixMilli(),
	}
}

func TestFileStoreSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if _, ok := store.Load(); ok {
		t.Fatal("Load on empty store reported a token")
	}

	want := tokenExpiringAt(time.Now().Add(time.Hour))
	if err := store.Save(want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, ok := store.Load()
	if !ok {
		t.Fatal("Load did not find the saved token")
	}
	if got.Token != want.Token || got.User.Email != want.User.Email || got.ExpiresAt != want.ExpiresAt {
		t.Errorf("Load returned %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Load after Clear reported a token")
	}
}

func TestFileStoreSelfHealingExpired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if err := store.Save(tokenExpiringAt(time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	// Both reads come back absent; the first removes the stale slot.
	if _, ok := store.Load(); ok {
		t.Fatal("Load returned an expired token")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired slot was not cleared by Load")
	}
	if _, ok := store.Load(); ok {
		t.Fatal("second Load returned a token")
	}
}

func TestFileStoreSelfHealingMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if _, ok := store.Load(); ok {
		t.Fatal("Load returned a token from a malformed slot")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("malformed slot was not cleared by Load")
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	first := tokenExpiringAt(time.Now().Add(time.Hour))
	second := tokenExpiringAt(time.Now().Add(2 * time.Hour))
	second.Token = "replacement"

	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got, ok := store.Load()
	if !ok || got.Token != "replacement" {
		t.Errorf("Load returned %+v, want the replacement token", got)
	}
}

func TestMemoryStoreSelfHealing(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(tokenExpiringAt(time.Now().Add(-time.Second))); err != nil {
		t.Fatal(err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Load returned an expired token")
	}
	if _, ok := store.Load(); ok {
		t.Error("second Load returned a token")
	}
}
