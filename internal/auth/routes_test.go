package auth_test

import (
	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/auth"
)

func chiRouter(h *auth.Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/auth", h.MountRoutes)
	return r
}
