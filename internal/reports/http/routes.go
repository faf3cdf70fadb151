// Package reporthttp exposes the financial reports over HTTP.
package reporthttp

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers report endpoints onto the router. Callers must
// already carry a resolved identity.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Route("/api/reports", func(rr chi.Router) {
		rr.Get("/company", h.handleCompany)
		rr.Get("/clients/{clientID}", h.handleClient)
		rr.Get("/motoboys/{motoboyID}", h.handleMotoboy)
		rr.Get("/orders", h.handleOrders)
	})
}
