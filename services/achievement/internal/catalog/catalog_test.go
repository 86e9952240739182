package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/game-platform/services/achievement/internal/domain"
)

func TestCatalog_Get(t *testing.T) {
	c, err := New([]domain.Definition{
		{ID: 80001, TotalProgress: 1},
		{ID: 80002, TotalProgress: 5, StopWatchingAfterFinish: true},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d, err := c.Get(80002)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d.TotalProgress != 5 || !d.StopWatchingAfterFinish {
		t.Fatalf("unexpected definition %+v", d)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 definitions, got %d", c.Len())
	}
}

func TestCatalog_GetMissing(t *testing.T) {
	c, _ := New(nil)
	_, err := c.Get(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var dnf *domain.DefinitionNotFoundError
	if !errors.As(err, &dnf) || dnf.ID != 42 {
		t.Fatalf("expected DefinitionNotFoundError{42}, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]domain.Definition{
		{ID: 1, TotalProgress: 0},
		{ID: 2, TotalProgress: 3},
		{ID: 2, TotalProgress: 4},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "achievements.json")
	body := `[
		{"id": 81000, "total_progress": 10, "stop_watching_after_finish": true},
		{"id": 81001, "total_progress": 1}
	]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	d, err := c.Get(81000)
	if err != nil || d.TotalProgress != 10 || !d.StopWatchingAfterFinish {
		t.Fatalf("unexpected definition %+v, err %v", d, err)
	}
	if d, _ := c.Get(81001); d.StopWatchingAfterFinish {
		t.Fatal("flag should default to false")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte(`{"id": 1}`), 0o600)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected decode error")
	}
}
