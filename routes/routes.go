package routes

import (
	"os"
	"strings"
	"time"

	"wellfield-backend/config"
	"wellfield-backend/controllers"
	"wellfield-backend/metrics"
	"wellfield-backend/services"
	"wellfield-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(mailer services.Mailer) *gin.Engine {
	r := gin.Default()

	r.Use(config.PerformanceLogger())
	r.Use(metrics.Middleware())

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		allowedOrigins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	controllers.Setup(mailer)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Static("/media", controllers.UploadDir())

	// Public site
	r.GET("/", controllers.Home)
	r.GET("/pages/:type", controllers.Page)
	r.GET("/contact", controllers.ContactPrefill)
	r.POST("/contact", controllers.SubmitContact)
	r.GET("/catalog", controllers.GetCatalog)

	// Authentication
	r.GET("/login", controllers.LoginPage)
	r.POST("/login", controllers.Login)
	r.GET("/magic-login/:token", controllers.MagicLogin)
	r.GET("/logout", controllers.Logout)

	// Stripe pushes catalog events here
	r.POST("/stripe/webhook", controllers.StripeWebhook)

	authenticated := r.Group("/api")
	authenticated.Use(utils.AuthMiddleware())
	{
		authenticated.GET("/me", controllers.Me)

		managers := authenticated.Group("/")
		managers.Use(controllers.ManagerRequired())
		{
			managers.GET("/customers", controllers.GetCustomers)
			managers.GET("/customers/:id", controllers.GetCustomer)
			managers.PUT("/customers/:id", controllers.UpdateCustomer)
			managers.POST("/customers/:id/magic-link", controllers.SendMagicLink)

			managers.GET("/appointments", controllers.GetAppointments)
			managers.POST("/appointments", controllers.CreateAppointment)
			managers.GET("/appointments/:id", controllers.GetAppointment)
			managers.PUT("/appointments/:id", controllers.UpdateAppointment)
			managers.PATCH("/appointments/:id/status", controllers.UpdateAppointmentStatus)
			managers.DELETE("/appointments/:id", controllers.DeleteAppointment)

			managers.GET("/messages", controllers.ListContacts)
			managers.POST("/messages/:id/replied", controllers.MarkContactReplied)

			managers.GET("/content", controllers.ListContent)
			managers.POST("/content", controllers.CreateContent)
			managers.PUT("/content/:id", controllers.UpdateContent)
			managers.DELETE("/content/:id", controllers.DeleteContent)

			managers.POST("/catalog/sync", controllers.SyncCatalog)
		}
	}

	return r
}
