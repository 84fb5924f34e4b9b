package providers

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/psstapp/psst-server/internal/config"
	"github.com/psstapp/psst-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, err
	}

	log.Info("database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: st}, nil
}
