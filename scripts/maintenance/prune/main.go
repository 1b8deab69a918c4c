// Command prune trims the console's Postgres tables: spent idempotency keys
// and activity entries past their retention.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/vivionix/vivionix-admin/internal/platform/db"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

func main() {
	ctx := context.Background()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatal("PG_DSN is required")
	}
	pool, err := db.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	keys, err := shared.NewIdempotencyStore(pool).Cleanup(ctx, duration("IDEMPOTENCY_RETENTION", 7*24*time.Hour))
	if err != nil {
		log.Fatalf("prune idempotency keys: %v", err)
	}
	log.Printf("removed %d idempotency keys", keys)

	entries, err := shared.NewActivityLog(pool, nil).Prune(ctx, duration("ACTIVITY_RETENTION", 365*24*time.Hour))
	if err != nil {
		log.Fatalf("prune activity log: %v", err)
	}
	log.Printf("removed %d activity entries", entries)
}

func duration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return d
}
