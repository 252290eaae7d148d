package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/PratikDhanave/profile-sync-service/internal/handlers"
	"github.com/PratikDhanave/profile-sync-service/internal/profilesync"
)

// Pinger reports whether the profile store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires probes, metrics and the webhook.
// Probes: /health, /ready
// Metrics: /metrics
// Webhook: POST /, POST /handle-new-user
func NewRouter(st Pinger, syncer *profilesync.Syncer, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// Wrong-method requests on a known path get 405, as on the Lambda entrypoint.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, profilesync.MsgMethodNotAllowed)
	})
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the profile store is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterMetricRoutes(r, gatherer)
	handlers.RegisterWebhookRoutes(r, syncer)

	return r
}
