package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

const defaultSemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1"

// SemanticScholar searches the Semantic Scholar graph API.
type SemanticScholar struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewSemanticScholar(cfg config.ScholarConfig) *SemanticScholar {
	baseURL := cfg.SemanticScholar.BaseURL
	if baseURL == "" {
		baseURL = defaultSemanticScholarBaseURL
	}
	return &SemanticScholar{
		baseURL: baseURL,
		apiKey:  cfg.SemanticScholar.APIKey,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
	}
}

func (s *SemanticScholar) Name() string {
	return "semanticscholar"
}

type s2SearchResponse struct {
	Data []s2Paper `json:"data"`
}

type s2Paper struct {
	PaperID  string `json:"paperId"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Year     int    `json:"year"`
	Venue    string `json:"venue"`
	Citation int    `json:"citationCount"`
	URL      string `json:"url"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]domain.Paper, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "title,abstract,authors,year,venue,citationCount,url")
	endpoint := s.baseURL + "/paper/search?" + params.Encode()

	resp, err := doWithRetry(ctx, s.client, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, err
		}
		if s.apiKey != "" {
			req.Header.Set("x-api-key", s.apiKey)
		}
		return req, nil
	}, s.retries, s.backoff)
	if err != nil {
		return nil, fmt.Errorf("semantic scholar search: %w", err)
	}
	defer resp.Body.Close()

	var search s2SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("semantic scholar search: failed to parse response: %w", err)
	}

	papers := make([]domain.Paper, 0, len(search.Data))
	for _, sp := range search.Data {
		authors := make([]string, 0, len(sp.Authors))
		for _, au := range sp.Authors {
			if au.Name != "" {
				authors = append(authors, au.Name)
			}
		}
		papers = append(papers, domain.Paper{
			ID:            "s2:" + sp.PaperID,
			Title:         sp.Title,
			Abstract:      sp.Abstract,
			Authors:       authors,
			Year:          sp.Year,
			Venue:         sp.Venue,
			CitationCount: sp.Citation,
			URL:           sp.URL,
			Source:        "semanticscholar",
		})
	}
	return papers, nil
}
