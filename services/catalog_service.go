// services/catalog_service.go
package services

import (
	"fmt"
	"log"
	"os"

	"wellfield-backend/models"

	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/product"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogService keeps the local Product/Price tables mirroring the Stripe
// catalog: a nightly full sync plus webhook-driven incremental upserts.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &CatalogService{db: db}
}

func (s *CatalogService) Enabled() bool {
	return os.Getenv("STRIPE_SECRET_KEY") != ""
}

func (s *CatalogService) StartScheduler() {
	if !s.Enabled() {
		log.Println("Stripe not configured, catalog sync disabled")
		return
	}

	c := cron.New()

	// Full sync every night at 3 AM
	c.AddFunc("0 3 * * *", func() {
		if err := s.SyncCatalog(); err != nil {
			log.Printf("Catalog sync failed: %v", err)
		}
	})

	c.Start()
	log.Println("Catalog sync scheduler started")
}

// SyncCatalog walks the full Stripe product and price lists and upserts each
// row locally.
func (s *CatalogService) SyncCatalog() error {
	if !s.Enabled() {
		return fmt.Errorf("stripe is not configured")
	}

	log.Println("Starting catalog sync...")
	synced := 0

	it := product.List(&stripe.ProductListParams{})
	for it.Next() {
		sp := it.Product()
		if err := UpsertStripeProduct(s.db, sp); err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", sp.ID, err)
		}
		synced++

		params := &stripe.PriceListParams{Product: stripe.String(sp.ID)}
		pit := price.List(params)
		for pit.Next() {
			if err := UpsertStripePrice(s.db, pit.Price()); err != nil {
				return fmt.Errorf("failed to upsert price %s: %w", pit.Price().ID, err)
			}
		}
		if err := pit.Err(); err != nil {
			return fmt.Errorf("price listing failed for %s: %w", sp.ID, err)
		}
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("product listing failed: %w", err)
	}

	log.Printf("Catalog sync completed: %d products", synced)
	return nil
}

// UpsertStripeProduct mirrors one Stripe product (update_or_create by ID).
func UpsertStripeProduct(db *gorm.DB, sp *stripe.Product) error {
	row := models.Product{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Active:      sp.Active,
		Metadata:    metadataToJSONB(sp.Metadata),
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "active", "metadata", "updated_at",
		}),
	}).Create(&row).Error
}

// UpsertStripePrice mirrors one Stripe price. Prices referencing a product
// that is not mirrored locally are skipped.
func UpsertStripePrice(db *gorm.DB, sp *stripe.Price) error {
	if sp.Product == nil {
		return fmt.Errorf("price %s has no product reference", sp.ID)
	}

	var count int64
	if err := db.Model(&models.Product{}).Where("id = ?", sp.Product.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		log.Printf("Skipping price %s: product %s not mirrored", sp.ID, sp.Product.ID)
		return nil
	}

	row := models.Price{
		ID:        sp.ID,
		ProductID: sp.Product.ID,
		Active:    sp.Active,
		Currency:  string(sp.Currency),
		LookupKey: sp.LookupKey,
		Metadata:  metadataToJSONB(sp.Metadata),
	}
	if sp.UnitAmount != 0 {
		amount := sp.UnitAmount
		row.UnitAmount = &amount
	}
	if sp.BillingScheme != "" {
		row.BillingScheme = string(sp.BillingScheme)
	}
	if sp.Recurring != nil {
		row.RecurringInterval = string(sp.Recurring.Interval)
		row.RecurringIntervalCount = sp.Recurring.IntervalCount
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "active", "currency", "unit_amount", "billing_scheme",
			"recurring_interval", "recurring_interval_count", "lookup_key",
			"metadata", "updated_at",
		}),
	}).Create(&row).Error
}

func metadataToJSONB(meta map[string]string) models.JSONB {
	out := models.JSONB{}
	for k, v := range meta {
		out[k] = v
	}
	return out
}
