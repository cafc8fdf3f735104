package scholar

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

const defaultArxivBaseURL = "http://export.arxiv.org/api/query"

// Arxiv searches the arXiv Atom API.
type Arxiv struct {
	baseURL string
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewArxiv(cfg config.ScholarConfig) *Arxiv {
	baseURL := cfg.Arxiv.BaseURL
	if baseURL == "" {
		baseURL = defaultArxivBaseURL
	}
	return &Arxiv{
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
	}
}

func (a *Arxiv) Name() string {
	return "arxiv"
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

func (a *Arxiv) Search(ctx context.Context, query string, limit int) ([]domain.Paper, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("max_results", fmt.Sprintf("%d", limit))
	params.Set("sortBy", "relevance")
	endpoint := a.baseURL + "?" + params.Encode()

	resp, err := doWithRetry(ctx, a.client, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	}, a.retries, a.backoff)
	if err != nil {
		return nil, fmt.Errorf("arxiv search: %w", err)
	}
	defer resp.Body.Close()

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("arxiv search: failed to parse feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		papers = append(papers, entryToPaper(entry))
	}
	return papers, nil
}

func entryToPaper(entry atomEntry) domain.Paper {
	authors := make([]string, 0, len(entry.Authors))
	for _, au := range entry.Authors {
		if name := strings.TrimSpace(au.Name); name != "" {
			authors = append(authors, name)
		}
	}

	pageURL := entry.ID
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Type == "text/html" {
			pageURL = link.Href
			break
		}
	}

	year := 0
	// Published is RFC3339, e.g. 2024-03-18T17:59:59Z.
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(entry.Published)); err == nil {
		year = t.Year()
	}

	return domain.Paper{
		ID:       arxivID(entry.ID),
		Title:    collapseWhitespace(entry.Title),
		Abstract: collapseWhitespace(entry.Summary),
		Authors:  authors,
		Year:     year,
		Venue:    "arXiv",
		URL:      pageURL,
		Source:   "arxiv",
	}
}

// arxivID strips the URL prefix from an entry id such as
// http://arxiv.org/abs/2403.12345v2.
func arxivID(id string) string {
	if idx := strings.LastIndex(id, "/abs/"); idx >= 0 {
		return "arxiv:" + id[idx+len("/abs/"):]
	}
	return id
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
