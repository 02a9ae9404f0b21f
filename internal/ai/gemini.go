// internal/ai/gemini.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultModelID = "gemini-2.5-flash"

	// maxPromptContent caps how much scraped text goes into the analysis
	// prompt.
	maxPromptContent = 10000
)

// truncateUTF8 cuts s to at most max bytes without splitting a rune; the
// Gemini transport rejects strings that are not valid UTF-8.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// serviceCatalog is the fixed list of agency services the model may
// recommend from. Keep in sync with the sales catalog.
const serviceCatalog = `
1. Local SEO - Dominate local search results, Google My Business optimization, citation building, review management
2. Organic SEO - Improve search rankings, keyword research, on-page optimization, technical SEO, link building
3. Social Media Management - Brand presence, content creation, community management, social media strategy, performance analytics
4. Meta Ad Management - Facebook & Instagram advertising, campaign setup & optimization, audience targeting, creative development
5. Google Ad Management - Search & display campaigns, keyword optimization, ad copy testing, conversion tracking
6. Digital Marketing Consulting - Strategy development, marketing audits, performance analysis, growth planning
7. WordPress Web Development - Custom WordPress design, mobile-responsive layouts, SEO optimization, performance optimization
8. App Development - iOS & Android development, user experience design, app store optimization
9. Automation Services - Workflow automation, marketing automation, CRM integration, process optimization
`

// GeminiClient implements Analyzer and Composer against the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClient creates a Gemini-backed analyzer/composer.
func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ai: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultModelID
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create gemini client: %w", err)
	}

	return &GeminiClient{client: client, modelID: modelID}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// generate sends one prompt and returns the concatenated text parts of the
// first candidate.
func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.modelID)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("ai: gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("ai: gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("ai: gemini returned empty content")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", errors.New("ai: gemini returned empty text")
	}
	return result, nil
}

// Analyze asks the model for a market analysis of the scraped content and a
// ranked match against the service catalog, all in one structured reply.
func (c *GeminiClient) Analyze(ctx context.Context, websiteContent, companyName string) (*Analysis, error) {
	websiteContent = truncateUTF8(websiteContent, maxPromptContent)

	prompt := fmt.Sprintf(`Analyze this company's website content and provide a market analysis
plus service recommendations.

Company: %s
Website Content:
%s

Available Services:
%s

Return JSON with this structure:
{
    "company_name": "Name of the company",
    "what_they_do": "Brief summary of their business (2-3 sentences)",
    "industry": "Primary industry/sector",
    "business_type": "Type of business (e.g., E-commerce, SaaS, Service Provider)",
    "growth_potential": "High/Medium/Low with brief explanation",
    "pain_points": ["Potential challenge 1", "Potential challenge 2"],
    "opportunities": ["Growth opportunity 1", "Growth opportunity 2"],
    "recommended_services": [
        {
            "service_name": "Service Name (must come from the Available Services list)",
            "priority": "High/Medium",
            "why_relevant": "Why this service would help them",
            "expected_impact": "What results they can expect"
        }
    ],
    "email_hook": "A compelling opening line referencing their specific situation"
}

Recommend the TOP 3-4 most relevant services only. Be specific and insightful.`,
		companyName, websiteContent, serviceCatalog)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var analysis Analysis
	if err := parseModelJSON(raw, &analysis); err != nil {
		return nil, fmt.Errorf("ai: analysis reply: %w", err)
	}
	if analysis.CompanyName == "" {
		analysis.CompanyName = companyName
	}
	return &analysis, nil
}

// Compose asks the model for the personalized outreach email built on the
// analysis. Results-focused style per the sales playbook.
func (c *GeminiClient) Compose(ctx context.Context, analysis *Analysis, companyName, recipientEmail string) (*EmailDraft, error) {
	var services strings.Builder
	for i, svc := range analysis.RecommendedServices {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&services, "%d. %s: %s\n   Expected Impact: %s\n",
			i+1, svc.ServiceName, svc.WhyRelevant, svc.ExpectedImpact)
	}

	prompt := fmt.Sprintf(`Write a RESULTS-FOCUSED, transformation-driven B2B sales email to %s.

CRITICAL STYLE REQUIREMENTS:
- DO NOT talk about "who we are" or company history
- FOCUS 100%% on RESULTS, BENEFITS, and TRANSFORMATION
- Use "Imagine..." storytelling to paint the outcome
- Highlight what they GET, not what we do
- Address them as "Hi %s Team,"
- Keep it under 200 words with a clear CTA (book a 15-min call)
- Subject line MUST be catchy and relevant

Context About Target:
- Company: %s
- Industry: %s
- Pain Points: %s
- Growth Potential: %s
- Opening hook to build on: %s

Our Solutions That Solve Their Problems:
%s

Return JSON with 'subject' and 'body_html' fields. body_html must be valid
HTML paragraphs, no markdown.`,
		companyName, companyName, companyName,
		analysis.Industry, strings.Join(analysis.PainPoints, "; "),
		analysis.GrowthPotential, analysis.EmailHook, services.String())

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var draft EmailDraft
	if err := parseModelJSON(raw, &draft); err != nil {
		return nil, fmt.Errorf("ai: composition reply: %w", err)
	}
	return &draft, nil
}

var (
	_ Analyzer = (*GeminiClient)(nil)
	_ Composer = (*GeminiClient)(nil)
)
