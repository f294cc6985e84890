package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/catalog"
	"github.com/jafarshop/feedshop/internal/config"
)

const pageSize = 50

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-product/main.go <name>")
		fmt.Println("Example: go run cmd/find-product/main.go \"desk lamp\"")
		os.Exit(1)
	}

	target := strings.ToLower(os.Args[1])

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := catalog.NewClient(cfg.Upstream, cfg.Catalog, logger)
	ctx := context.Background()

	fmt.Printf("Searching for product: %s\n\n", os.Args[1])

	found := 0
	checked := 0
	for page := 1; ; page++ {
		res := client.FetchProducts(ctx, catalog.ProductQuery{Search: os.Args[1], Page: page, Limit: pageSize})
		if res.IsFailed() {
			fmt.Fprintf(os.Stderr, "Failed to fetch products: %v\n", res.Err)
			os.Exit(1)
		}
		if res.IsEmpty() {
			break
		}

		for _, p := range res.Value {
			checked++
			if !strings.Contains(strings.ToLower(p.Name), target) {
				continue
			}
			found++
			fmt.Printf("Product: %s\n", p.Name)
			fmt.Printf("  ID: %s\n", p.ID)
			fmt.Printf("  Price: %s %s\n", p.Price.StringFixed(cfg.Catalog.CurrencyPrecision), p.Currency)
			if p.SalePrice.Valid {
				fmt.Printf("  Sale price: %s %s\n", p.SalePrice.Decimal.StringFixed(cfg.Catalog.CurrencyPrecision), p.Currency)
			}
			fmt.Printf("  Stock: %d\n", p.Stock)
			if p.ShopID != "" {
				fmt.Printf("  Shop ID: %s\n", p.ShopID)
			}
			for _, v := range p.Variants {
				fmt.Printf("  Variant %s: color=%q size=%q sku=%q\n", v.ID, v.Color, v.Size, v.SKU)
			}
			fmt.Println()
		}

		if len(res.Value) < pageSize {
			break
		}
		fmt.Printf("Searching... (checked %d products so far)\n", checked)
	}

	if found == 0 {
		fmt.Printf("No product matching '%s' found (checked %d products).\n", os.Args[1], checked)
		os.Exit(1)
	}
}
