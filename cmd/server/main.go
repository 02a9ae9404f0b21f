// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/serphawk/outreach-backend/internal/ai"
	"github.com/serphawk/outreach-backend/internal/controller"
	"github.com/serphawk/outreach-backend/internal/db"
	"github.com/serphawk/outreach-backend/internal/handler"
	"github.com/serphawk/outreach-backend/internal/mailer"
	"github.com/serphawk/outreach-backend/internal/queue"
	"github.com/serphawk/outreach-backend/internal/repository"
	"github.com/serphawk/outreach-backend/internal/scraper"
	"github.com/serphawk/outreach-backend/internal/service"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()
	activityRepo := &repository.ActivityRepository{DB: db.DB}

	senderEmail := envOr("SENDER_EMAIL", "padilla@dapros.com")

	// Rate limiter, primed from the persisted history so restarts don't
	// reset the hourly budget.
	hourlyLimit := envIntOr("HOURLY_EMAIL_LIMIT", 50)
	limiter := service.NewRateLimiter(hourlyLimit, time.Hour)
	recent, err := activityRepo.SentTimestampsSince(senderEmail, time.Now().Add(-time.Hour))
	if err != nil {
		log.Println("⚠️ failed to prime rate limiter from history:", err)
	} else {
		limiter.Prime(recent)
		log.Println("Rate limiter primed with", len(recent), "sends from the last hour")
	}

	// Website scraper: rendered sidecar when configured, plain HTTP otherwise.
	var siteScraper scraper.Scraper
	if sidecarURL := os.Getenv("SCRAPER_URL"); sidecarURL != "" {
		siteScraper = scraper.NewSidecarScraper(sidecarURL)
	} else {
		log.Println("⚠️ SCRAPER_URL not set, using plain HTTP fetch (JS-heavy sites may yield little text)")
		siteScraper = scraper.NewHTTPScraper()
	}

	// Gemini analyzer/composer.
	gemini, err := ai.NewGeminiClient(context.Background(), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatal("failed to create gemini client: ", err)
	}
	defer gemini.Close()

	// SMTP mailer.
	smtpSender := mailer.NewSMTPSender(
		envOr("SMTP_SERVER", "smtp.gmail.com"),
		envIntOr("SMTP_PORT", 587),
		os.Getenv("SMTP_EMAIL"),
		os.Getenv("SMTP_PASSWORD"),
	)

	// Activity event queue (optional).
	var activityQueue queue.Queue
	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		amqpQueue, err := queue.NewAMQPQueue(amqpURL)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ: ", err)
		}
		defer amqpQueue.Close()
		activityQueue = amqpQueue
	} else {
		log.Println("⚠️ AMQP_URL not set, activity events disabled")
	}

	outreachService := &service.OutreachService{
		Scraper:  siteScraper,
		Analyzer: gemini,
		Composer: gemini,
	}

	dispatcher := &service.Dispatcher{
		Activities:  activityRepo,
		Mailer:      smtpSender,
		Limiter:     limiter,
		Queue:       activityQueue,
		SenderEmail: senderEmail,
	}

	outreachController := &controller.OutreachController{
		OutreachService: outreachService,
		Dispatcher:      dispatcher,
	}

	activityHandler := handler.NewActivityHandler(activityRepo, senderEmail)

	r := chi.NewRouter()

	// Outreach routes
	r.Post("/draft-lead", outreachController.DraftLead)
	r.Post("/send-lead", outreachController.SendLead)
	r.Get("/activities", activityHandler.GetActivitiesHandler)
	r.Get("/health", activityHandler.HealthHandler)

	port := envOr("PORT", "8080")
	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
