package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"shopcore/pkg/config"
	"shopcore/pkg/database"
	"shopcore/pkg/model"
)

var cfg = config.New()

const insertBatchSize = 500

// words used for generating items' names
var (
	categories = []string{"Electronics", "Clothing", "Books", "Home", "Sports", "Beauty", "Toys", "Food", "Health", "Garden"}
	adjectives = []string{"Premium", "Deluxe", "Ultra", "Pro", "Smart", "Classic", "Modern", "Vintage", "Luxury", "Budget"}
	items      = []string{"Phone", "Laptop", "Watch", "Headphones", "Camera", "Tablet", "Speaker", "Keyboard", "Mouse", "Monitor"}
)

func main() {
	t0 := time.Now()
	defer func() { log.Printf("Items generated. Elapsed: %s", time.Since(t0)) }()

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	if err := generate(db); err != nil {
		log.Fatalf("### Can't generate items: %v", err)
	}
}

func generate(db *sql.DB) error {
	itemDB, err := database.NewItemDatabase(db)
	if err != nil {
		return fmt.Errorf("can't init item database: %w", err)
	}

	ctx := context.Background()

	batch := make([]model.Item, 0, insertBatchSize)
	inserted := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if _, err := itemDB.Add(ctx, batch...); err != nil {
			return fmt.Errorf("can't insert items: %w", err)
		}

		inserted += len(batch)
		batch = batch[:0]
		log.Printf("Inserted %d of %d items\n", inserted, cfg.ItemsCount)
		return nil
	}

	for i := 0; i < cfg.ItemsCount; i++ {
		batch = append(batch, generateItem())

		if len(batch) == insertBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

func generateItem() model.Item {
	adj := adjectives[rand.Intn(len(adjectives))]
	category := categories[rand.Intn(len(categories))]
	item := items[rand.Intn(len(items))]

	// prices in 0.99 .. 999.99
	price := decimal.NewFromInt(int64(rand.Intn(1000) + 1)).Sub(decimal.NewFromFloat(0.01))

	return model.Item{
		Name:            fmt.Sprintf("%s %s %s", adj, category, item),
		Description:     fmt.Sprintf("%s %s from the %s department", adj, item, category),
		Price:           price,
		QuantityInStock: rand.Intn(cfg.MaxInitialStock + 1),
	}
}
