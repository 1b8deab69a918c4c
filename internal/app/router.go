package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vivionix/vivionix-admin/internal/auth"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customerreps"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/employees"
	"github.com/vivionix/vivionix-admin/internal/masterdata/pricing"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendorreps"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/observability"
	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/jobs"
	"github.com/vivionix/vivionix-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Vault          *shared.TokenVault
	AuthHandler    *auth.Handler
	Guard          *auth.Guard
	Modules        *Modules
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Vault:          params.Vault,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Require)
		mountModules(r, params.Modules)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Static())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	return r
}

func mountModules(r chi.Router, m *Modules) {
	if m == nil {
		return
	}
	deps, s := m.Deps, m.Stores

	r.Get("/", m.Home.Home)

	crud.Mount(r, deps, employees.NewEntity(s.Employees))
	crud.Mount(r, deps, customers.NewEntity(s.Customers))
	crud.Mount(r, deps, customerreps.NewEntity(s.CustomerReps, s.Customers))
	crud.Mount(r, deps, vendors.NewEntity(s.Vendors))
	crud.Mount(r, deps, vendorreps.NewEntity(s.VendorReps, s.Vendors))
	crud.Mount(r, deps, products.NewEntity(s.Products, s.Vendors))
	crud.Mount(r, deps, pricing.NewEntity(s.Prices, s.Customers, s.Products))

	crud.Mount(r, deps, m.Orders.Orders())
	crud.Mount(r, deps, m.Orders.Items())
	crud.Mount(r, deps, m.Invoices.Entity())
	crud.Mount(r, deps, m.Challans.Entity())
	crud.Mount(r, deps, m.Stock.Entity())

	if m.Reports != nil {
		r.Route("/reports", m.Reports.MountRoutes)
	}
	r.Route("/activity", m.Activity.MountRoutes)
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
