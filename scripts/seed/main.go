// Command seed loads demo master data and stock into the Vivionix API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/inventory/stock"
	"github.com/vivionix/vivionix-admin/internal/masterdata/customers"
	"github.com/vivionix/vivionix-admin/internal/masterdata/employees"
	"github.com/vivionix/vivionix-admin/internal/masterdata/products"
	"github.com/vivionix/vivionix-admin/internal/masterdata/vendors"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	data := defaultFixtures
	if path := os.Getenv("SEED_FIXTURES"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read fixtures", slog.Any("error", err))
			os.Exit(1)
		}
		data = raw
	}
	fixtures, err := parseFixtures(data)
	if err != nil {
		logger.Error("parse fixtures", slog.Any("error", err))
		os.Exit(1)
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL: getenv("API_BASE_URL", "http://localhost:8000"),
		Timeout: 30 * time.Second,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("init api client", slog.Any("error", err))
		os.Exit(1)
	}
	tokens, err := client.Login(ctx, getenv("SEED_USERNAME", os.Getenv("API_SERVICE_USERNAME")), getenv("SEED_PASSWORD", os.Getenv("API_SERVICE_PASSWORD")))
	if err != nil {
		logger.Error("login", slog.Any("error", err))
		os.Exit(1)
	}
	ctx = apiclient.WithTokenStore(ctx, apiclient.NewMemoryTokenStore(tokens))

	seeder := newSeeder(client, logger)
	counts, err := seeder.Run(ctx, fixtures, shared.DateOf(time.Now().UTC()))
	if err != nil {
		logger.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("→ %s: %d created\n", k, counts[k])
	}
}

type seeder struct {
	vendors   crud.Store[vendors.Vendor]
	products  crud.Store[products.Product]
	customers crud.Store[customers.Customer]
	employees crud.Store[employees.Employee]
	stock     crud.Store[stock.Record]
	binder    *crud.Binder
	logger    *slog.Logger
}

func newSeeder(client *apiclient.Client, logger *slog.Logger) *seeder {
	return &seeder{
		vendors:   apiclient.NewResource[vendors.Vendor](client, vendors.APIPath),
		products:  apiclient.NewResource[products.Product](client, products.APIPath),
		customers: apiclient.NewResource[customers.Customer](client, customers.APIPath),
		employees: apiclient.NewResource[employees.Employee](client, employees.APIPath),
		stock:     apiclient.NewResource[stock.Record](client, stock.APIPath),
		binder:    crud.NewBinder(),
		logger:    logger,
	}
}

// Run creates every fixture in dependency order: vendors, products,
// customers, employees, stock. Records already present by natural key are
// reused so the seed can be re-run.
func (s *seeder) Run(ctx context.Context, f Fixtures, today shared.Date) (map[string]int, error) {
	counts := map[string]int{}

	existingVendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	vendorIDs := map[string]int64{}
	for _, v := range existingVendors {
		vendorIDs[v.Name] = v.ID
	}
	for _, fx := range f.Vendors {
		if _, ok := vendorIDs[fx.Name]; ok {
			continue
		}
		created, err := create(ctx, s, s.vendors, fx.record(), "vendor "+fx.Name)
		if err != nil {
			return nil, err
		}
		vendorIDs[created.Name] = created.ID
		counts["vendors"]++
	}

	existingProducts, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	productIDs := map[string]int64{}
	for _, p := range existingProducts {
		productIDs[p.SKU] = p.ID
	}
	for _, fx := range f.Products {
		if _, ok := productIDs[fx.SKU]; ok {
			continue
		}
		rec, err := fx.record(vendorIDs)
		if err != nil {
			return nil, err
		}
		created, err := create(ctx, s, s.products, rec, "product "+fx.SKU)
		if err != nil {
			return nil, err
		}
		productIDs[created.SKU] = created.ID
		counts["products"]++
	}

	for _, fx := range f.Customers {
		rec, err := fx.record()
		if err != nil {
			return nil, err
		}
		if _, err := create(ctx, s, s.customers, rec, "customer "+fx.Name); err != nil {
			return nil, err
		}
		counts["customers"]++
	}
	for _, fx := range f.Employees {
		rec, err := fx.record()
		if err != nil {
			return nil, err
		}
		if _, err := create(ctx, s, s.employees, rec, "employee "+fx.EmployeeCode); err != nil {
			return nil, err
		}
		counts["employees"]++
	}
	for _, fx := range f.Stock {
		rec, err := fx.record(productIDs, today)
		if err != nil {
			return nil, err
		}
		if _, err := create(ctx, s, s.stock, rec, "stock "+fx.BatchNumber); err != nil {
			return nil, err
		}
		counts["stock"]++
	}
	return counts, nil
}

// create validates record with the console rules before posting it.
func create[T any](ctx context.Context, s *seeder, store crud.Store[T], record T, label string) (T, error) {
	if errs := s.binder.Validate(record); len(errs) > 0 {
		var zero T
		return zero, fmt.Errorf("%s: invalid fixture: %s", label, joinErrors(errs))
	}
	created, err := store.Create(ctx, record)
	if err != nil {
		if fields := apiclient.FieldErrors(err); len(fields) > 0 {
			return created, fmt.Errorf("%s: rejected by api: %s", label, joinErrors(fields))
		}
		return created, fmt.Errorf("%s: %w", label, err)
	}
	s.logger.Debug("seeded", slog.String("record", label))
	return created, nil
}

func joinErrors(errs map[string]string) string {
	parts := make([]string, 0, len(errs))
	for field, msg := range errs {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
