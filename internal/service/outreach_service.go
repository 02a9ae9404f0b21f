// internal/service/outreach_service.go
package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/serphawk/outreach-backend/internal/ai"
	appErrors "github.com/serphawk/outreach-backend/internal/errors"
	"github.com/serphawk/outreach-backend/internal/model"
	"github.com/serphawk/outreach-backend/internal/scraper"
)

// Per-call ceilings for the external steps of draft generation. A timeout
// surfaces as the corresponding failure kind, never a hang.
const (
	scrapeTimeout  = 90 * time.Second
	analyzeTimeout = 60 * time.Second
	composeTimeout = 60 * time.Second
)

// OutreachService produces email drafts: scrape the prospect's site,
// analyze it, compose a personalized email. Read-only and side-effect-free,
// so any number of drafts can run concurrently; nothing here touches the
// activity store or the rate limiter.
type OutreachService struct {
	Scraper  scraper.Scraper
	Analyzer ai.Analyzer
	Composer ai.Composer
}

// DraftLead builds a Draft for operator review. Single attempt: any failed
// step is returned to the caller, who may re-invoke.
func (s *OutreachService) DraftLead(ctx context.Context, companyName, websiteURL, primaryEmail string) (*model.Draft, error) {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, appErrors.NewValidation("company_name is required")
	}
	if !validEmail(primaryEmail) {
		return nil, appErrors.NewValidation("primary_email is not a valid email address")
	}
	normalizedURL, err := normalizeURL(websiteURL)
	if err != nil {
		return nil, err
	}

	log.Println("🧐 Analyzing", normalizedURL, "for personalization...")

	scrapeCtx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	content, err := s.Scraper.Scrape(scrapeCtx, normalizedURL)
	cancel()
	if err != nil {
		return nil, appErrors.NewAnalysis(normalizedURL, err.Error())
	}
	if strings.TrimSpace(content) == "" {
		return nil, appErrors.NewAnalysis(normalizedURL, "website yielded no visible text")
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	analysis, err := s.Analyzer.Analyze(analyzeCtx, content, companyName)
	cancel()
	if err != nil {
		return nil, appErrors.NewAnalysis(normalizedURL, err.Error())
	}

	composeCtx, cancel := context.WithTimeout(ctx, composeTimeout)
	email, err := s.Composer.Compose(composeCtx, analysis, companyName, primaryEmail)
	cancel()
	if err != nil {
		return nil, appErrors.NewComposition(err.Error())
	}
	if strings.TrimSpace(email.Subject) == "" || strings.TrimSpace(email.BodyHTML) == "" {
		return nil, appErrors.NewComposition("model returned an empty subject or body")
	}

	return &model.Draft{
		CompanyName:         companyName,
		WebsiteURL:          normalizedURL,
		PrimaryEmail:        primaryEmail,
		Subject:             email.Subject,
		Body:                email.BodyHTML,
		RecommendedServices: strings.Join(analysis.ServiceNames(), ", "),
	}, nil
}
