package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ariefcatur/nava-store/internal/auth"
	"github.com/ariefcatur/nava-store/internal/catalog"
	"github.com/ariefcatur/nava-store/internal/orders"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log      *slog.Logger
	Catalog  *catalog.Service
	Orders   *orders.Service
	Auth     *auth.Authenticator
	Health   Pinger
	Gatherer prometheus.Gatherer // nil = tanpa /metrics
}

func NewRouter(d Deps) *chi.Mux {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger(d.Log), middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Health.Ping(ctx); err != nil {
				WriteError(w, r, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	ch := &CatalogHandler{Catalog: d.Catalog}
	oh := &OrdersHandler{Orders: d.Orders}
	ah := &AuthHandler{Auth: d.Auth}

	ch.Register(r)
	oh.Register(r)
	ah.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Middleware(WriteError))
		ch.RegisterAdmin(r)
		oh.RegisterAdmin(r)
	})
	return r
}
