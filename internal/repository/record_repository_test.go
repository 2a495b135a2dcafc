package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cityscope/api/internal/config"
	"github.com/cityscope/api/internal/database"
)

// These tests require a local PostgreSQL with the rent_crime_monthly table
// and are skipped in short mode.

func getTestConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "cityscope"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  1,
		PoolMax:  2,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestLoadAll(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresPool(ctx, getTestConfig())
	if err != nil {
		t.Skipf("Database not available: %v", err)
	}
	defer db.Close()

	repo := NewRecordRepository(db)
	records, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// Empty table is a valid degraded-mode load, never nil.
	if records == nil {
		t.Fatal("Expected non-nil record slice")
	}

	for i, rec := range records {
		if rec.Severity == "" {
			t.Errorf("Record %d has empty severity", i)
		}
		if rec.Count < 0 {
			t.Errorf("Record %d has negative count", i)
		}
		if rec.ZipCodes == nil {
			t.Errorf("Record %d has nil zip codes", i)
		}
		if i > 0 && rec.Date.Before(records[i-1].Date) {
			t.Errorf("Records not ordered by date at index %d", i)
		}
	}
}
