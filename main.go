package main

import (
	"log"
	"os"

	"quotecraft-backend/config"
	"quotecraft-backend/models"
	"quotecraft-backend/routes"
	"quotecraft-backend/utils"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	config.ConnectDB()

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.QuoteAttachment{},
		&models.QuoteEvent{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func main() {
	utils.StartCleanupScheduler()

	r := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("QuoteCraft backend listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
