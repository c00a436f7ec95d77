package routes

import (
	"os"
	"strings"
	"time"

	"quotecraft-backend/config"
	"quotecraft-backend/controllers"
	"quotecraft-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger())

	// Public endpoints reached from the client-facing quote link. No auth.
	public := r.Group("/api/quotes")
	{
		public.GET("/:id/view", controllers.ViewQuote)
		public.POST("/:id/accept", controllers.AcceptQuote)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		quotes := api.Group("/quotes")
		{
			quotes.POST("/generate", controllers.GenerateQuote)
			quotes.POST("", controllers.CreateQuote)
			quotes.GET("", controllers.GetQuotes)
			quotes.GET("/uploads/:quoteId/:filename", controllers.ServeQuoteUpload)
			quotes.GET("/:id", controllers.GetQuote)
			quotes.PUT("/:id", controllers.UpdateQuote)
			quotes.DELETE("/:id", controllers.DeleteQuote)
			quotes.POST("/:id/send", controllers.SendQuote)
			quotes.GET("/:id/pdf", controllers.QuotePDF)
		}

		profile := api.Group("/profile")
		{
			profile.GET("", controllers.GetProfile)
			profile.PUT("", controllers.UpdateProfile)
			profile.POST("/logo", controllers.UploadLogo)
			profile.GET("/logo/:filename", controllers.ServeLogo)
		}
	}

	return r
}
