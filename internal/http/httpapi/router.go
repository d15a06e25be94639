package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fashionmuse/internal/http/handlers"
	"fashionmuse/internal/middleware"
)

// NewRouter wires all HTTP routes. Generation and credit routes sit behind
// JWT auth; health, metrics, catalog and the payment webhook stay open (the
// webhook authenticates with its own shared secret).
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.I18N("en", lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/catalog", app.Catalog)
	r.Post("/v1/webhooks/payments", app.PaymentsWebhook)
	r.Handle("/metrics", promhttp.Handler())

	// Generated images published by the filesystem store.
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(app.Config.StorageBasePath))))

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Route("/v1/generations", func(r chi.Router) {
			r.Post("/", app.GenerationsCreate)
			r.Get("/", app.GenerationsList)
			r.Get("/{id}", app.GenerationsGet)
			r.Post("/{id}/favorite", app.GenerationsFavorite)
			r.Delete("/{id}", app.GenerationsDelete)
		})

		r.Route("/v1/credits", func(r chi.Router) {
			r.Get("/balance", app.CreditsBalance)
			r.Get("/history", app.CreditsHistory)
			r.Post("/bonus", app.CreditsBonus)
		})
	})

	return r
}
