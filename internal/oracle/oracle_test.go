package oracle

import (
	"context"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

func TestNewFailsWithoutPersistedModel(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, store.OpenOptions{Backend: store.SQLite, Create: true}, nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	cfg := &config.Configuration{}

	_, err = New(context.Background(), st, cfg, nil)
	if err == nil {
		t.Fatalf("New should fail when no discriminator model has been persisted")
	}
	if !xerrors.Is(err, xerrors.Fatal) {
		t.Errorf("New's error should be Fatal, got %v", err)
	}
}
