package localstate

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.Set("settings", doc{Name: "caos", Count: 2}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got doc
	if err := store.Get("settings", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "caos" || got.Count != 2 {
		t.Errorf("Get() = %+v, want {caos 2}", got)
	}

	if !store.Has("settings") {
		t.Error("Has() = false for stored key")
	}
}

func TestStoreGetMissingKey(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var out string
	if err := store.Get("nope", &out); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestStoreRemove(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := store.Set("k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Remove("k"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if store.Has("k") {
		t.Error("Has() = true after Remove()")
	}

	// Removing again is a no-op
	if err := store.Remove("k"); err != nil {
		t.Errorf("Remove() on missing key error = %v", err)
	}
}

func TestStoreReloadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Set("guest_id", "guest-123"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set("variant", "misterioso"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open() after write error = %v", err)
	}

	var guestID string
	if err := reopened.Get("guest_id", &guestID); err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if guestID != "guest-123" {
		t.Errorf("guest_id = %q after reopen, want %q", guestID, "guest-123")
	}

	if got := len(reopened.Keys()); got != 2 {
		t.Errorf("Keys() length = %d after reopen, want 2", got)
	}
}
