package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/spoolhq/spool-mcp/internal/models"
	"github.com/spoolhq/spool-mcp/internal/version"
)

const (
	probeTimeout  = 5 * time.Second
	probeCacheTTL = 3 * time.Second
)

// HealthChecker is implemented by clients that can report connectivity.
type HealthChecker interface {
	TestConnection(ctx context.Context) error
}

// HealthHandler serves GET /health with a live upstream probe. Probes
// are deduplicated through singleflight and cached briefly, so a
// scrape storm costs at most one Spool request per TTL window.
type HealthHandler struct {
	spool HealthChecker
	group singleflight.Group

	mu       sync.Mutex
	probedAt time.Time
	probeErr error
}

func NewHealthHandler(spool HealthChecker) *HealthHandler {
	return &HealthHandler{spool: spool}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	status := "healthy"

	if h.spool == nil {
		checks["spool_api"] = "disabled"
	} else if err := h.probe(); err != nil {
		checks["spool_api"] = "unavailable: " + err.Error()
		status = "degraded"
	} else {
		checks["spool_api"] = "ok"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, code, models.HealthResponse{
		Status:  status,
		Version: version.Version,
		Checks:  checks,
	})
}

// probe runs one connectivity check shared across concurrent callers.
// It deliberately uses its own context: the result is shared, so no
// single request's cancellation may abort it.
func (h *HealthHandler) probe() error {
	h.mu.Lock()
	if !h.probedAt.IsZero() && time.Since(h.probedAt) < probeCacheTTL {
		err := h.probeErr
		h.mu.Unlock()
		return err
	}
	h.mu.Unlock()

	_, err, _ := h.group.Do("spool", func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		err := h.spool.TestConnection(ctx)

		h.mu.Lock()
		h.probedAt = time.Now()
		h.probeErr = err
		h.mu.Unlock()
		return nil, err
	})
	return err
}
