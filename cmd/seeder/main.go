// cmd/seeder/main.go
//
// Seeds a few sample activity rows for local development so the activities
// feed has something to show. Never run against production.
package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/serphawk/outreach-backend/internal/db"
	"github.com/serphawk/outreach-backend/internal/model"
	"github.com/serphawk/outreach-backend/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	db.Init()
	repo := &repository.ActivityRepository{DB: db.DB}

	samples := []model.Draft{
		{
			CompanyName:         "Acme Web Studio",
			WebsiteURL:          "https://acme-web.example",
			PrimaryEmail:        "hello@acme-web.example",
			Subject:             "Imagine doubling your inbound leads",
			Body:                "<p>Hi Acme Web Studio Team,</p><p>Imagine waking up to a full pipeline...</p>",
			RecommendedServices: "Organic SEO, Google Ad Management",
		},
		{
			CompanyName:         "Harbor Dental",
			WebsiteURL:          "https://harbordental.example",
			PrimaryEmail:        "office@harbordental.example",
			Subject:             "Your patients are searching. Are they finding you?",
			Body:                "<p>Hi Harbor Dental Team,</p><p>Imagine your booking calendar filling itself...</p>",
			RecommendedServices: "Local SEO, Review Management",
		},
		{
			CompanyName:         "Northside Fitness",
			WebsiteURL:          "https://northsidefitness.example",
			PrimaryEmail:        "owner@northsidefitness.example",
			Subject:             "30 new member signups a month, on autopilot",
			Body:                "<p>Hi Northside Fitness Team,</p><p>Imagine new members finding you every day...</p>",
			RecommendedServices: "Meta Ad Management, Social Media Management",
		},
	}

	sentAt := time.Now().UTC().Add(-2 * time.Hour)
	for i, draft := range samples {
		activity, err := repo.RecordSend(draft, "seeder@serphawk.com", sentAt.Add(time.Duration(i)*time.Minute))
		if err != nil {
			log.Println("⚠️ failed to seed", draft.CompanyName, ":", err)
			continue
		}
		log.Println("✅ Seeded activity", activity.ID, "for", draft.CompanyName)
	}

	log.Println("Seeding complete")
}
