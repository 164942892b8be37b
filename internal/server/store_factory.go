package server

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/preston-bernstein/games-list-service/internal/config"
	"github.com/preston-bernstein/games-list-service/internal/lists"
	"github.com/preston-bernstein/games-list-service/internal/logging"
	"github.com/preston-bernstein/games-list-service/internal/metrics"
	"github.com/preston-bernstein/games-list-service/internal/sharepoint"
	"github.com/preston-bernstein/games-list-service/internal/store"
)

// storeFactory assembles the configured backend with shared instrumentation.
type storeFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newStoreFactory(logger *slog.Logger, metrics *metrics.Recorder) storeFactory {
	return storeFactory{logger: logger, metrics: metrics}
}

func (f storeFactory) build(cfg config.Config) lists.Store {
	base := selectStore(cfg, f.logger)
	return lists.NewInstrumentedStore(base, f.logger, f.metrics, normalizeBackendName(cfg.Backend, base))
}

func selectStore(cfg config.Config, logger *slog.Logger) lists.Store {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return store.NewMemoryStore()
	case config.BackendSharePoint:
		return sharepoint.NewClient(sharepoint.Config{
			SiteURL:     cfg.SharePoint.SiteURL,
			ListTitle:   cfg.SharePoint.ListTitle,
			AccessToken: cfg.SharePoint.AccessToken,
			Timeout:     cfg.SharePoint.HTTPTimeout,
		})
	default:
		logging.Warn(logger, "unknown backend, falling back to memory", slog.String(logging.FieldBackend, cfg.Backend))
		return store.NewMemoryStore()
	}
}

// normalizeBackendName returns a lower-cased backend name, deriving it from the
// store type when not configured, so metrics and logs use one label.
func normalizeBackendName(raw string, s lists.Store) string {
	if raw != "" {
		return strings.ToLower(raw)
	}
	switch s.(type) {
	case *store.MemoryStore:
		return config.BackendMemory
	case *sharepoint.Client:
		return config.BackendSharePoint
	case nil:
		return "store"
	default:
		return strings.ToLower(fmt.Sprintf("%T", s))
	}
}
