package providers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/psstapp/psst-server/internal/config"
	"github.com/psstapp/psst-server/internal/rpc"
	"github.com/psstapp/psst-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server running the RPC endpoint.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	spaces := do.MustInvoke[*service.SpaceService](i)
	forum := do.MustInvoke[*service.ForumService](i)
	subs := do.MustInvoke[*service.SubscriptionService](i)
	secrets := do.MustInvoke[*service.SecretService](i)

	handler := rpc.NewServer(spaces, forum, subs, secrets, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
