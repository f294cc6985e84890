package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/config"
	"github.com/jafarshop/feedshop/internal/repository/postgres"
	"github.com/jafarshop/feedshop/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/show-order/main.go <order-id>")
		fmt.Println("Example: go run cmd/show-order/main.go 7d6f0c1e-2b1a-4f59-9a55-3c0c4a8b1e20")
		os.Exit(1)
	}

	orderID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid order ID: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	order, err := repos.Order.GetByID(context.Background(), orderID)
	if err != nil {
		if errors.IsNotFound(err) {
			fmt.Printf("Order %s not found.\n", orderID)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Failed to load order: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Order: %s\n", order.ID)
	fmt.Printf("Session: %s\n", order.SessionID)
	if order.UserID != "" {
		fmt.Printf("User: %s\n", order.UserID)
	}
	fmt.Printf("Source: %s\n", order.Source)
	fmt.Printf("Status: %s\n", order.Status)
	fmt.Printf("Created: %s\n", order.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("\nItems:\n")
	for _, item := range order.Items {
		fmt.Printf("  %dx %s (product %s", item.Quantity, item.Name, item.ProductID)
		if item.VariantID != "" {
			fmt.Printf(", variant %s", item.VariantID)
		}
		fmt.Printf(") @ %s\n", item.UnitPrice.StringFixed(cfg.Catalog.CurrencyPrecision))
	}
	fmt.Printf("\nTotal: %s %s\n", order.Total.StringFixed(cfg.Catalog.CurrencyPrecision), order.Currency)
}
