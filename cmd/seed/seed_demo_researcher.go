package main

import (
	"log"
	"os"

	"ai-research-be/internal/model"
	"ai-research-be/pkg/database"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Demo Researcher...")

	email := os.Getenv("SEED_RESEARCHER_EMAIL")
	if email == "" {
		email = "demo@example.com"
	}
	password := os.Getenv("SEED_RESEARCHER_PASSWORD")
	if password == "" {
		password = "demo-password"
	}

	var existing model.Researcher
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Printf("Researcher '%s' already exists, skipping...", email)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Error hashing password: %v", err)
		}
		hashStr := string(hash)

		researcher := model.Researcher{
			Email:         email,
			PasswordHash:  &hashStr,
			FullName:      "Demo Researcher",
			Affiliation:   "Example University",
			ResearchFocus: "Induced pluripotent stem cells in neurodegeneration",
		}
		if err := db.Create(&researcher).Error; err != nil {
			log.Fatalf("Error creating researcher: %v", err)
		}
		log.Printf("Created researcher: %s (%s)", researcher.FullName, email)
	}

	log.Println("Seeding Notification Types...")
	SeedNotificationTypes(db)

	log.Println("Seeding completed!")
}
