package main

import (
	"fmt"
	"log"
	"os"

	"wellfield-backend/config"
	"wellfield-backend/models"
	"wellfield-backend/routes"
	"wellfield-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()

	config.DB.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Contact{},
		&models.CustomerProfile{},
		&models.Appointment{},
		&models.NotificationLog{},
		&models.Content{},
		&models.ContentMedia{},
		&models.Product{},
		&models.Price{},
	)
}

func main() {
	mailer := services.NewMailService()

	reminders := services.NewReminderService(config.DB, mailer)
	reminders.StartScheduler()

	catalog := services.NewCatalogService(config.DB)
	catalog.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter(mailer)
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
