package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"wellfield-backend/config"
	"wellfield-backend/services"
	"wellfield-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeWebhook applies catalog events pushed by Stripe. The signature is
// verified against STRIPE_WEBHOOK_SECRET before anything is parsed.
func StripeWebhook(c *gin.Context) {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Webhook not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature")
		return
	}

	switch string(event.Type) {
	case "product.created", "product.updated":
		var sp stripe.Product
		if err := json.Unmarshal(event.Data.Raw, &sp); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Malformed product payload")
			return
		}
		if err := services.UpsertStripeProduct(config.DB, &sp); err != nil {
			log.Printf("[WEBHOOK] Failed to upsert product %s: %v", sp.ID, err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to apply event")
			return
		}

	case "price.created", "price.updated":
		var sp stripe.Price
		if err := json.Unmarshal(event.Data.Raw, &sp); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Malformed price payload")
			return
		}
		if err := services.UpsertStripePrice(config.DB, &sp); err != nil {
			log.Printf("[WEBHOOK] Failed to upsert price %s: %v", sp.ID, err)
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to apply event")
			return
		}

	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		log.Printf("[WEBHOOK] Ignoring event type %s", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
