// Package seed batch-loads a demo catalog: shops scattered around a center
// point, each stocked from a master grocery pool. It writes through the
// ledger's catalog operations and never touches the commit path.
package seed

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/grocerease/grocerease-backend/internal/config"
	"github.com/grocerease/grocerease-backend/internal/ledger"
	"github.com/grocerease/grocerease-backend/internal/models"
)

// masterItemPool is the shared grocery assortment shops draw from.
var masterItemPool = []string{
	"Fresh Apple", "Banana Bunch", "Carrot Bag", "Spinach", "Tomato",
	"Potato", "Red Onion", "Garlic Bulbs", "Green Chili", "Lemon",
	"Cucumber", "Broccoli", "Watermelon", "Grapes",
	"Whole Milk", "Cheddar Cheese", "Dozen Eggs", "Salted Butter",
	"Greek Yogurt", "Paneer", "Cream",
	"Sourdough Bread", "Whole Wheat Bread", "Croissant", "Bagel",
	"Chocolate Cake",
	"Chicken Breast", "Ground Beef", "Salmon Fillet",
	"Basmati Rice", "Pasta Penne", "Corn Cereal", "Oats", "White Sugar",
	"Wheat Flour", "Cooking Oil", "Table Salt", "Black Pepper",
	"Turmeric Powder", "Red Chili Powder", "Honey",
	"Ground Coffee", "Green Tea", "Orange Juice", "Cola Soda",
	"Mineral Water", "Energy Drink",
	"Potato Chips", "Chocolate Bar", "Cookies", "Mixed Nuts", "Popcorn",
	"Dish Soap", "Paper Towels", "Laundry Detergent",
}

// Seeder loads the demo catalog.
type Seeder struct {
	ledger ledger.Ledger
	cfg    config.SeedConfig
	logger *zap.Logger
	rng    *rand.Rand
}

func New(l ledger.Ledger, cfg config.SeedConfig, logger *zap.Logger) *Seeder {
	return &Seeder{
		ledger: l,
		cfg:    cfg,
		logger: logger.Named("seed"),
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
}

// Run writes cfg.Shops shops, each with cfg.ItemsPerShop items. Prices land
// in 2-21, stock in 10-59, coordinates within ±0.1 degrees of the configured
// center. Existing records with the same ids are overwritten.
func (s *Seeder) Run(ctx context.Context) (int, int, error) {
	var shopCount, itemCount int

	for i := 1; i <= s.cfg.Shops; i++ {
		shopID := fmt.Sprintf("shop%d", i)
		shop := &models.Shop{
			ID:        shopID,
			Name:      fmt.Sprintf("GrocerEase Shop %d", i),
			OwnerID:   fmt.Sprintf("owner%d", i),
			Latitude:  s.cfg.CenterLat + s.rng.Float64()*0.2 - 0.1,
			Longitude: s.cfg.CenterLng + s.rng.Float64()*0.2 - 0.1,
		}
		if err := s.ledger.PutShop(ctx, shop); err != nil {
			return shopCount, itemCount, err
		}
		shopCount++

		for j, name := range s.pickItems() {
			item := &models.Item{
				ID:     fmt.Sprintf("item_%s_%d", shopID, j+1),
				ShopID: shopID,
				Name:   name,
				Price:  float64(s.rng.Intn(20) + 2),
				Stock:  s.rng.Intn(50) + 10,
			}
			if err := s.ledger.PutItem(ctx, item); err != nil {
				return shopCount, itemCount, err
			}
			itemCount++
		}
	}

	s.logger.Info("Catalog seeded",
		zap.Int("shops", shopCount),
		zap.Int("items", itemCount),
	)
	return shopCount, itemCount, nil
}

// pickItems shuffles the master pool and takes the configured count,
// repeating names only when a shop wants more items than the pool holds.
func (s *Seeder) pickItems() []string {
	shuffled := append([]string(nil), masterItemPool...)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	count := s.cfg.ItemsPerShop
	picked := make([]string, 0, count)
	for len(picked) < count {
		take := count - len(picked)
		if take > len(shuffled) {
			take = len(shuffled)
		}
		picked = append(picked, shuffled[:take]...)
	}
	return picked
}
