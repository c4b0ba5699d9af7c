package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xtding233/dropcalc/internal/calc"
	"github.com/xtding233/dropcalc/internal/metrics"
)

// maxBody bounds POST bodies.
const maxBody = 1 << 20

// NewRouter wires every HTTP route of the service.
func NewRouter(svc *calc.Service, log *zap.Logger) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(metrics.Middleware)
	r.Use(requestLogger(log))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/tc/{name}", h.handleTreasureClass)
		r.Get("/tc/{name}/simulate", h.handleSimulate)
		r.Get("/monster/{id}", h.handleMonster)
		r.Post("/evaluate", h.handleEvaluateBatch)

		r.Get("/treasureclasses", h.handleListTreasureClasses)
		r.Get("/monsters", h.handleListMonsters)
		r.Get("/items", h.handleListItems)
	})
	return r
}
