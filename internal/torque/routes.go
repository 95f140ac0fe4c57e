package torque

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the torque endpoints under /torque. The update
// endpoint is throttled per client when a limiter is configured.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/torque", func(r chi.Router) {
		r.Post("/curve", h.Curve)
		r.With(h.throttle...).Post("/update", h.Update)
		r.Post("/export", h.Export)
		r.Post("/report", h.Report)
	})
}
