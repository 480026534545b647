// Command seed-catalog creates the drug catalog CSV when it does not exist
// yet, or rewrites an existing one in the canonical column layout. It never
// leaves the application without a usable catalog.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/diabetesmx/ada-advisor/internal/catalog"
	"github.com/diabetesmx/ada-advisor/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration invalid: %v\n", err)
		os.Exit(1)
	}
	path := cfg.Catalog.Path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Printf("❌ Cannot create catalog directory: %v\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := catalog.WriteCSV(path, catalog.SeedRows()); err != nil {
			fmt.Printf("❌ Cannot write seed catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Seed catalog written to %s (%d entries)\n", path, len(catalog.SeedRows()))
		return
	}

	// Existing file: reload and rewrite so hand-edited rows get normalized
	// and unknown classes are dropped with a warning.
	c := catalog.Load(path)
	if c.Fallback() {
		if err := catalog.WriteCSV(path, catalog.SeedRows()); err != nil {
			fmt.Printf("❌ Cannot repair catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Unreadable catalog replaced with seed table at %s\n", path)
		return
	}
	if err := catalog.WriteCSV(path, c.Entries()); err != nil {
		fmt.Printf("❌ Cannot rewrite catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Catalog normalized at %s (%d entries)\n", path, len(c.Entries()))
}
