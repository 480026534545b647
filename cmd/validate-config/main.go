package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/diabetesmx/ada-advisor/internal/config"
)

func main() {
	fmt.Println("🔍 Validating configuration...")

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env file not found: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Configuration invalid:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Configuration valid!")
	fmt.Printf("📋 Details:\n")
	fmt.Printf("  - HTTP Port: %s\n", cfg.HTTPPort)
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Storage Backend: %s\n", cfg.Storage.Backend)
	fmt.Printf("  - Profile CSV: %s\n", cfg.Storage.CSVPath)
	fmt.Printf("  - DB Host: %s\n", cfg.Storage.DB.Host)
	fmt.Printf("  - DB Port: %s\n", cfg.Storage.DB.Port)
	fmt.Printf("  - DB User: %s\n", cfg.Storage.DB.User)
	fmt.Printf("  - DB Name: %s\n", cfg.Storage.DB.DBName)
	fmt.Printf("  - Catalog CSV: %s\n", cfg.Catalog.Path)
	fmt.Printf("  - Catalog Institution: %s\n", orAll(cfg.Catalog.Institution))
	fmt.Printf("  - State Backend: %s\n", cfg.State.Backend)
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<not set>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orAll(institution string) string {
	if institution == "" {
		return "<all>"
	}
	return institution
}
