package main

import (
	"log"
	"os"

	"ai-invoicing-be/internal/model"
	"ai-invoicing-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Seeds a demo tenant with a user, two clients and a WhatsApp channel link
// so the assistant can be exercised right after migration.
func main() {
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

	tenantId := uuid.MustParse("7b1f4c0e-2d33-4b8e-9b6a-8f5a2e1c9d01")
	userId := uuid.MustParse("a4e8d2f6-9c51-47b3-8e2d-1f0b6c3a7e02")

	user := model.User{
		Id:       userId,
		TenantId: tenantId,
		FullName: "Demo Freelancer",
		Email:    "demo@example.com",
		Role:     "user",
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		log.Fatalf("Error: Failed to seed user: %v", err)
	}

	clients := []model.Client{
		{TenantId: tenantId, Name: "Cranealos", Email: "billing@cranealos.example"},
		{TenantId: tenantId, Name: "Estudio Norte", Email: ""},
	}
	for i := range clients {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&clients[i]).Error; err != nil {
			log.Fatalf("Error: Failed to seed client %q: %v", clients[i].Name, err)
		}
	}

	link := model.ChannelLink{
		Channel:        "whatsapp",
		ExternalUserId: "34600000001",
		UserId:         userId,
		TenantId:       tenantId,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
		log.Fatalf("Error: Failed to seed channel link: %v", err)
	}

	log.Println("✅ Success: Demo data seeded.")
	log.Printf("Tenant: %s", tenantId)
	log.Printf("User:   %s (demo@example.com)", userId)
	log.Println("Link:   whatsapp / 34600000001")
}
