package testsupport

import (
	"testing"

	"reelcut/internal/config"
	"reelcut/internal/paths"
	"reelcut/internal/runstate"
)

// MustOpenStore opens the run-state store under the config's data directory
// and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runstate.Store {
	t.Helper()

	store, err := runstate.Open(paths.New(cfg.Paths.DataDir).StateDBPath())
	if err != nil {
		t.Fatalf("runstate.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
