package recommend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// ErrFetchFailed means the external catalog could not be reached or read.
// This layer never retries; retry policy, if any, belongs to the collaborator
// boundary.
var ErrFetchFailed = errors.New("recommendation fetch failed")

const maxRecommendations = 10

// Recommendation is one suggested CPE opportunity.
type Recommendation struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Source      string  `json:"source"`
	CPEValue    float64 `json:"cpe_value"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
}

// Fetcher retrieves live recommendations for one certifying body. Implemented
// by HTTPFetcher; replaceable in tests.
type Fetcher interface {
	Fetch(ctx context.Context, authority string) ([]Recommendation, error)
}

// Engine combines live authority listings with a static general catalog,
// falling back entirely to static entries when the fetch fails.
type Engine struct {
	fetcher Fetcher
}

func NewEngine(f Fetcher) *Engine {
	return &Engine{fetcher: f}
}

// Recommendations returns up to 10 suggestions for the certification. It
// never fails: a FetchFailed from the collaborator is logged and replaced by
// the fallback catalog.
func (e *Engine) Recommendations(ctx context.Context, authority string) []Recommendation {
	recs, err := e.fetcher.Fetch(ctx, authority)
	if err != nil {
		log.Printf("recommendation fetch for %s: %v", authority, err)
		recs = fallbackRecommendations()
	}
	recs = append(recs, generalRecommendations()...)
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// HTTPFetcher scans a certifying body's professional-development page for
// event and webinar listings. One GET, one timeout, no retries.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// per-authority professional development pages
var authorityPages = map[string]string{
	"ISC2":       "https://www.isc2.org/professional-development",
	"EC-Council": "https://www.eccouncil.org/train-certify/",
	"CompTIA":    "https://www.comptia.org/continuing-education",
	"OffSec":     "https://www.offsec.com/courses-and-certifications/",
}

func (f *HTTPFetcher) Fetch(ctx context.Context, authority string) ([]Recommendation, error) {
	pageURL, ok := authorityPages[authority]
	if !ok {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "cpetrack/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d from %s", ErrFetchFailed, resp.StatusCode, pageURL)
	}

	titles, err := scanTitles(resp.Body, 5)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	recs := make([]Recommendation, 0, len(titles))
	for _, title := range titles {
		recs = append(recs, Recommendation{
			Title:       title,
			Type:        "Webinar",
			Source:      authority,
			CPEValue:    1.0,
			URL:         pageURL,
			Description: "Official " + authority + " professional development activity",
		})
	}
	return recs, nil
}

// scanTitles walks the HTML tree and collects heading and link texts that
// look like event titles.
func scanTitles(r io.Reader, limit int) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var titles []string
	seen := map[string]bool{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(titles) >= limit {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3", "h4", "a":
				t := strings.Join(strings.Fields(nodeText(n)), " ")
				if len(t) > 10 && len(t) <= 100 && !seen[t] {
					seen[t] = true
					titles = append(titles, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return titles, nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

// generalRecommendations are always appended after authority-specific hits.
func generalRecommendations() []Recommendation {
	return []Recommendation{
		{
			Title:       "SANS Security Training",
			Type:        "Training",
			Source:      "SANS",
			CPEValue:    32.0,
			URL:         "https://www.sans.org/cyber-security-courses/",
			Description: "Industry-leading cybersecurity training courses",
		},
		{
			Title:       "NIST Cybersecurity Framework Webinars",
			Type:        "Webinar",
			Source:      "NIST",
			CPEValue:    1.0,
			URL:         "https://www.nist.gov/cyberframework",
			Description: "Government cybersecurity framework training",
		},
		{
			Title:       "ISACA Cybersecurity Nexus",
			Type:        "Conference",
			Source:      "ISACA",
			CPEValue:    8.0,
			URL:         "https://www.isaca.org/training-and-events",
			Description: "Professional governance and risk management",
		},
		{
			Title:       "DEF CON Security Conference",
			Type:        "Conference",
			Source:      "DEF CON",
			CPEValue:    16.0,
			URL:         "https://defcon.org",
			Description: "Premier hacker convention with cutting-edge security research",
		},
	}
}

// fallbackRecommendations replace live listings when the fetch fails.
func fallbackRecommendations() []Recommendation {
	return []Recommendation{
		{
			Title:       "Cybersecurity Professional Development",
			Type:        "Self-Study",
			Source:      "General",
			CPEValue:    1.0,
			URL:         "https://www.cybersecurityeducation.org",
			Description: "Comprehensive cybersecurity learning resources",
		},
		{
			Title:       "Industry Security Webinars",
			Type:        "Webinar",
			Source:      "General",
			CPEValue:    1.0,
			URL:         "https://www.securityweek.com/events/",
			Description: "Weekly cybersecurity industry updates and training",
		},
	}
}
