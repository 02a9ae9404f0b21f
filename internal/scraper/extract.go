// internal/scraper/extract.go
package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// subpageKeywords mark links worth crawling for team/contact info.
var subpageKeywords = []string{"about", "team", "contact", "people", "leadership", "board"}

// skipTags are removed before text extraction.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"svg":      true,
	"iframe":   true,
}

// extractText parses an HTML document and returns its visible text, one
// chunk per line, with script/style noise stripped.
func extractText(rawHTML string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	lines := []string{}
	for _, line := range strings.Split(sb.String(), "\n") {
		for _, chunk := range strings.Split(strings.TrimSpace(line), "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				lines = append(lines, chunk)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// findEmails returns the unique email addresses mentioned anywhere in the
// raw HTML, in order of first appearance.
func findEmails(rawHTML string) []string {
	seen := map[string]bool{}
	emails := []string{}
	for _, m := range emailPattern.FindAllString(rawHTML, -1) {
		if !seen[m] {
			seen[m] = true
			emails = append(emails, m)
		}
	}
	return emails
}

// findSubpages returns same-domain links whose href hints at an about/team/
// contact page, resolved against base, excluding base itself.
func findSubpages(rawHTML, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	subpages := []string{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				href := attr.Val
				lower := strings.ToLower(href)
				matched := false
				for _, k := range subpageKeywords {
					if strings.Contains(lower, k) {
						matched = true
						break
					}
				}
				if !matched {
					continue
				}
				ref, err := url.Parse(href)
				if err != nil {
					continue
				}
				full := baseURL.ResolveReference(ref)
				if full.Host != baseURL.Host {
					continue
				}
				fullStr := full.String()
				if fullStr == base || seen[fullStr] {
					continue
				}
				seen[fullStr] = true
				subpages = append(subpages, fullStr)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return subpages
}
