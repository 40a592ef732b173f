package controllers

import (
	"net/http"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetCatalog returns the active products with their active prices, straight
// from the local Stripe mirror.
func GetCatalog(c *gin.Context) {
	var products []models.Product
	err := config.DB.Preload("Prices", func(db *gorm.DB) *gorm.DB {
		return db.Where("active = ?", true).Order("unit_amount ASC")
	}).
		Where("active = ?", true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve catalog")
		return
	}

	c.JSON(http.StatusOK, products)
}

// SyncCatalog triggers a full mirror refresh on demand.
func SyncCatalog(c *gin.Context) {
	if !catalog.Enabled() {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Stripe is not configured")
		return
	}

	if err := catalog.SyncCatalog(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Catalog sync failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Catalog synced successfully"})
}
