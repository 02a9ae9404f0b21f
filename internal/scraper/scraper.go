// Package scraper retrieves prospect website content for analysis.
//
// Two implementations exist: SidecarScraper talks to a headless-browser
// sidecar so client-side-rendered sites still yield their visible text, and
// HTTPScraper does a plain fetch for when no sidecar is deployed. Both walk
// up to three about/team/contact subpages and surface any email addresses
// found in the markup.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxSubpages    = 3
	maxContentSize = 50000
	pageTimeoutMS  = 30000
	subTimeoutMS   = 15000
)

// Scraper fetches rendered page text for a URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// fetcher retrieves raw HTML for one page. Sidecar and plain-HTTP scrapers
// share the crawl logic and differ only here.
type fetcher interface {
	fetchHTML(ctx context.Context, url string, timeoutMS int) (string, error)
}

// scrape runs the shared crawl: main page, keyword subpages, email banner.
func scrape(ctx context.Context, f fetcher, url string) (string, error) {
	mainHTML, err := f.fetchHTML(ctx, url, pageTimeoutMS)
	if err != nil {
		return "", err
	}

	emails := findEmails(mainHTML)
	combined := fmt.Sprintf("--- MAIN PAGE (%s) ---\n%s", url, extractText(mainHTML))

	subpages := findSubpages(mainHTML, url)
	if len(subpages) > maxSubpages {
		subpages = subpages[:maxSubpages]
	}
	for _, sub := range subpages {
		subHTML, err := f.fetchHTML(ctx, sub, subTimeoutMS)
		if err != nil {
			log.Println("⚠️ failed subpage", sub, ":", err)
			continue
		}
		for _, e := range findEmails(subHTML) {
			found := false
			for _, existing := range emails {
				if existing == e {
					found = true
					break
				}
			}
			if !found {
				emails = append(emails, e)
			}
		}
		combined += fmt.Sprintf("\n\n--- SUBPAGE (%s) ---\n%s", sub, extractText(subHTML))
	}

	if len(emails) > 0 {
		combined = fmt.Sprintf("--- DETECTED EMAILS: %s ---\n\n", strings.Join(emails, ", ")) + combined
	}

	return truncateUTF8(combined, maxContentSize), nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune; a cut
// mid-character would hand invalid UTF-8 to the model API.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// ====================== Sidecar (rendered) ======================

// SidecarScraper fetches pages through a headless-browser sidecar service so
// JS-heavy sites are rendered before extraction.
type SidecarScraper struct {
	baseURL    string
	httpClient *http.Client
}

func NewSidecarScraper(baseURL string) *SidecarScraper {
	return &SidecarScraper{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type renderRequest struct {
	URL     string `json:"url"`
	Timeout int    `json:"timeout,omitempty"` // milliseconds
}

type renderResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
	Error   string `json:"error,omitempty"`
}

func (s *SidecarScraper) fetchHTML(ctx context.Context, url string, timeoutMS int) (string, error) {
	body, err := json.Marshal(renderRequest{URL: url, Timeout: timeoutMS})
	if err != nil {
		return "", fmt.Errorf("scraper: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/content", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("scraper: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraper: sidecar request failed: %w", err)
	}
	defer resp.Body.Close()

	var result renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("scraper: decode sidecar response: %w", err)
	}
	if !result.Success {
		return "", fmt.Errorf("scraper: sidecar render failed: %s", result.Error)
	}
	return result.HTML, nil
}

func (s *SidecarScraper) Scrape(ctx context.Context, url string) (string, error) {
	return scrape(ctx, s, url)
}

// ====================== Plain HTTP fallback ======================

// HTTPScraper fetches raw HTML directly. Sites that render entirely
// client-side will yield little text this way; deploy the sidecar for those.
type HTTPScraper struct {
	httpClient *http.Client
}

func NewHTTPScraper() *HTTPScraper {
	return &HTTPScraper{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (s *HTTPScraper) fetchHTML(ctx context.Context, url string, timeoutMS int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("scraper: create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraper: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("scraper: fetch returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("scraper: read body: %w", err)
	}
	return string(raw), nil
}

func (s *HTTPScraper) Scrape(ctx context.Context, url string) (string, error) {
	return scrape(ctx, s, url)
}
