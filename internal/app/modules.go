package app

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivionix/vivionix-admin/internal/activity"
	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/dashboard"
	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customerreps"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/employees"
	"github.com/vivionix/vivionix-admin/internal/masterdata/pricing"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendorreps"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/sales/challans"
	"github.com/vivionix/vivionix-admin/internal/sales/invoices"
	"github.com/vivionix/vivionix-admin/internal/sales/orders"
	"github.com/vivionix/vivionix-admin/report"
)

// ModuleParams are the collaborators every console module is built from.
type ModuleParams struct {
	Deps         crud.Deps
	API          *apiclient.Client
	Redis        *redis.Client
	ListCacheTTL time.Duration
	Thresholds   stock.Thresholds
	Reports      *report.Handler
	Enqueuer     stock.Enqueuer
}

// Stores are the API-backed collections, wrapped in the per-user list cache.
type Stores struct {
	Employees    crud.Store[employees.Employee]
	Customers    crud.Store[customers.Customer]
	CustomerReps crud.Store[customerreps.Representative]
	Vendors      crud.Store[vendors.Vendor]
	VendorReps   crud.Store[vendorreps.Representative]
	Products     crud.Store[products.Product]
	Prices       crud.Store[pricing.CustomerPrice]
	Orders       crud.Store[orders.Order]
	OrderItems   crud.Store[orders.Item]
	Invoices     crud.Store[invoices.Invoice]
	Challans     crud.Store[challans.Challan]
	Stock        crud.Store[stock.Record]
}

// Modules is everything the router mounts behind the login guard.
type Modules struct {
	Deps     crud.Deps
	Stores   Stores
	Orders   *orders.Handler
	Invoices *invoices.Handler
	Challans *challans.Handler
	Stock    *stock.Handler
	Home     *dashboard.Handler
	Activity *activity.Handler
	Reports  *report.Handler
}

func cached[T any](p ModuleParams, path, namespace string) crud.Store[T] {
	return crud.NewCachedStore[T](apiclient.NewResource[T](p.API, path), p.Redis, namespace, p.ListCacheTTL, p.Deps.Log())
}

// NewStores binds every collection to its API path.
func NewStores(p ModuleParams) Stores {
	return Stores{
		Employees:    cached[employees.Employee](p, employees.APIPath, "employees"),
		Customers:    cached[customers.Customer](p, customers.APIPath, "customers"),
		CustomerReps: cached[customerreps.Representative](p, customerreps.APIPath, "customerreps"),
		Vendors:      cached[vendors.Vendor](p, vendors.APIPath, "vendors"),
		VendorReps:   cached[vendorreps.Representative](p, vendorreps.APIPath, "vendorreps"),
		Products:     cached[products.Product](p, products.APIPath, "products"),
		Prices:       cached[pricing.CustomerPrice](p, pricing.APIPath, "pricing"),
		Orders:       cached[orders.Order](p, orders.APIPath, "orders"),
		OrderItems:   cached[orders.Item](p, orders.ItemAPIPath, "orderitems"),
		Invoices:     cached[invoices.Invoice](p, invoices.APIPath, "invoices"),
		Challans:     cached[challans.Challan](p, challans.APIPath, "challans"),
		Stock:        cached[stock.Record](p, stock.APIPath, "stock"),
	}
}

// NewModules wires the console handlers.
func NewModules(p ModuleParams) *Modules {
	stores := NewStores(p)
	orderStores := orders.Stores{
		Orders:    stores.Orders,
		Items:     stores.OrderItems,
		Customers: stores.Customers,
		Products:  stores.Products,
	}
	alerts := stock.NewAlertStore(p.Redis, 0)
	tiles := []dashboard.Tile{
		{Label: "Customers", URL: "/customers", Count: dashboard.CountOf(stores.Customers)},
		{Label: "Products", URL: "/products", Count: dashboard.CountOf(stores.Products)},
		{Label: "Vendors", URL: "/vendors", Count: dashboard.CountOf(stores.Vendors)},
		{Label: "Employees", URL: "/employees", Count: dashboard.CountOf(stores.Employees)},
		{Label: "Open orders", URL: "/orders", Count: dashboard.CountWhere(stores.Orders, func(o orders.Order) bool {
			return o.Status == orders.StatusPending || o.Status == orders.StatusConfirmed
		})},
		{Label: "Unpaid invoices", URL: "/invoices", Count: dashboard.CountWhere(stores.Invoices, func(i invoices.Invoice) bool {
			return i.AmountDue().IsPositive()
		})},
	}

	return &Modules{
		Deps:     p.Deps,
		Stores:   stores,
		Orders:   orders.NewHandler(p.Deps, orderStores, pricing.NewResolver(stores.Prices, stores.Products)),
		Invoices: invoices.NewHandler(p.Deps, stores.Invoices, orderStores, p.Reports),
		Challans: challans.NewHandler(p.Deps, stores.Challans, orderStores, p.Reports),
		Stock:    stock.NewHandler(p.Deps, stores.Stock, stores.Products, p.Thresholds, alerts, p.Enqueuer),
		Home:     dashboard.NewHandler(p.Deps, tiles, alerts),
		Activity: activity.NewHandler(p.Deps, p.Deps.Activity),
		Reports:  p.Reports,
	}
}
