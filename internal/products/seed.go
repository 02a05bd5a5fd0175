package product

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type seedProduct struct {
	name        string
	description string
	price       string
	imageURL    string
	stock       int
	category    string
	brand       string
}

var defaultCatalog = []seedProduct{
	{"Elegant Evening", "A sophisticated blend of jasmine, rose, and vanilla. Perfect for evening occasions.", "89.99", "https://images.unsplash.com/photo-1595425970377-c9703cf48b75?w=500", 50, "Women", "Luxury Scents"},
	{"Ocean Breeze", "Fresh aquatic notes with citrus and white musk. Ideal for daily wear.", "65.99", "https://images.unsplash.com/photo-1588405748880-12d1f469b8c9?w=500", 75, "Men", "Fresh Air"},
	{"Midnight Mystery", "Dark and seductive with notes of amber, oud, and patchouli.", "95.99", "https://images.unsplash.com/photo-1615634260167-c8cdede054de?w=500", 30, "Unisex", "Noir"},
	{"Rose Garden", "Romantic floral bouquet with Bulgarian rose, peony, and white musk.", "79.99", "https://images.unsplash.com/photo-1608248543803-ba4f8c70ae0b?w=500", 60, "Women", "Floral Dreams"},
	{"Citrus Fresh", "Energizing blend of bergamot, lemon, and grapefruit with a hint of mint.", "55.99", "https://images.unsplash.com/photo-1615634260167-c8cdede054de?w=500", 80, "Men", "Zest"},
	{"Vanilla Dream", "Warm and comforting with vanilla, caramel, and tonka bean.", "69.99", "https://images.unsplash.com/photo-1612817159949-195b6eb9e1af?w=500", 45, "Women", "Sweet Scents"},
	{"Woody Elite", "Masculine blend of cedarwood, sandalwood, and vetiver.", "85.99", "https://images.unsplash.com/photo-1615634260167-c8cdede054de?w=500", 55, "Men", "Timber"},
	{"Lavender Fields", "Calming and serene with French lavender, chamomile, and eucalyptus.", "72.99", "https://images.unsplash.com/photo-1612817159949-195b6eb9e1af?w=500", 65, "Unisex", "Nature"},
	{"Sensual Silk", "Luxurious blend of orchid, white lily, and cashmere wood.", "99.99", "https://images.unsplash.com/photo-1608248543803-ba4f8c70ae0b?w=500", 40, "Women", "Silk"},
	{"Power Sport", "Dynamic and energetic with green apple, mint, and cedar.", "59.99", "https://images.unsplash.com/photo-1588405748880-12d1f469b8c9?w=500", 70, "Men", "Active"},
}

// SeedDefaultCatalog inserts the starter catalog when the products table is
// empty. It returns how many rows were written.
func SeedDefaultCatalog(ctx context.Context, client *db.Client, logg *logger.Logger) (int, error) {
	if client == nil {
		return 0, fmt.Errorf("db client required")
	}

	inserted := 0
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		count, err := repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if count > 0 {
			return nil
		}

		var errs error
		for _, seed := range defaultCatalog {
			price, err := decimal.NewFromString(seed.price)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: parse price: %w", seed.name, err))
				continue
			}
			if _, err := repo.Create(ctx, &models.Product{
				Name:        seed.name,
				Description: seed.description,
				Price:       price,
				ImageURL:    seed.imageURL,
				Stock:       seed.stock,
				Category:    seed.category,
				Brand:       seed.brand,
			}); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", seed.name, err))
				continue
			}
			inserted++
		}
		return errs
	})
	if err != nil {
		return 0, fmt.Errorf("seed catalog: %w", err)
	}

	if logg != nil && inserted > 0 {
		logg.Info(logg.WithField(ctx, "count", inserted), "catalog seeded")
	}
	return inserted, nil
}
