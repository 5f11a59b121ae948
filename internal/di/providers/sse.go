package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookstandapp/bookstand-web/internal/logger"
	"github.com/bookstandapp/bookstand-web/internal/sse"
)

// SSEManagerHandle wraps the SSE manager with shutdown capability.
type SSEManagerHandle struct {
	Manager *sse.Manager
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
// The broadcast loop must be stopped before Manager.Shutdown, which waits
// for it to exit.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the SSE broadcast manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}
