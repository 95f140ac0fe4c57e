package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"induction-torque/internal/handlers"
	"induction-torque/internal/observability"
	"induction-torque/internal/torque"
)

func NewRouter(th *torque.Handler) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	th.RegisterRoutes(r)

	return r
}
