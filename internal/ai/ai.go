// Package ai wraps the generative model behind narrow Analyzer and Composer
// contracts so the pipeline can run against a deterministic stand-in in
// tests.
package ai

import "context"

// Service is one recommended agency service for a prospect.
type Service struct {
	ServiceName    string `json:"service_name"`
	Priority       string `json:"priority,omitempty"`
	WhyRelevant    string `json:"why_relevant,omitempty"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
}

// Analysis is the structured result of analyzing a prospect's website.
type Analysis struct {
	CompanyName         string    `json:"company_name"`
	Industry            string    `json:"industry"`
	BusinessType        string    `json:"business_type,omitempty"`
	GrowthPotential     string    `json:"growth_potential,omitempty"`
	PainPoints          []string  `json:"pain_points"`
	Opportunities       []string  `json:"opportunities,omitempty"`
	RecommendedServices []Service `json:"recommended_services"`
	EmailHook           string    `json:"email_hook,omitempty"`
	RawSummary          string    `json:"what_they_do,omitempty"`
}

// ServiceNames returns the recommended service names for display and for
// the comma-joined column on activity records.
func (a *Analysis) ServiceNames() []string {
	names := make([]string, 0, len(a.RecommendedServices))
	for _, s := range a.RecommendedServices {
		if s.ServiceName != "" {
			names = append(names, s.ServiceName)
		}
	}
	return names
}

// EmailDraft is the generated subject and HTML body.
type EmailDraft struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}

// Analyzer turns scraped website text into a structured analysis.
type Analyzer interface {
	Analyze(ctx context.Context, websiteContent, companyName string) (*Analysis, error)
}

// Composer turns an analysis into a personalized cold email.
type Composer interface {
	Compose(ctx context.Context, analysis *Analysis, companyName, recipientEmail string) (*EmailDraft, error)
}
