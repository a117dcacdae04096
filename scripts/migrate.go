// Migration script creating the snapshot table.
// Run with: go run ./scripts/migrate.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	envFile := os.Getenv("PROBREACOG_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	fmt.Println("Connected to database")

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS engine_snapshots (
			id          UUID PRIMARY KEY,
			name        TEXT NOT NULL,
			state       JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		log.Fatalf("Failed to create engine_snapshots: %v", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS engine_snapshots_name_created_at_idx
		ON engine_snapshots (name, created_at DESC)
	`)
	if err != nil {
		log.Fatalf("Failed to create snapshot index: %v", err)
	}

	fmt.Println("Migration complete")
}
