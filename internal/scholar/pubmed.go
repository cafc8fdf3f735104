package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mikiiiss/research-assistant/internal/config"
	"github.com/mikiiiss/research-assistant/internal/domain"
)

const defaultPubMedBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMed searches the NCBI E-utilities in two steps: esearch for PMIDs,
// then esummary for the records.
type PubMed struct {
	baseURL string
	apiKey  string
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewPubMed(cfg config.ScholarConfig) *PubMed {
	baseURL := cfg.PubMed.BaseURL
	if baseURL == "" {
		baseURL = defaultPubMedBaseURL
	}
	return &PubMed{
		baseURL: baseURL,
		apiKey:  cfg.PubMed.APIKey,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
	}
}

func (p *PubMed) Name() string {
	return "pubmed"
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type esummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type esummaryRecord struct {
	Title           string `json:"title"`
	PubDate         string `json:"pubdate"`
	FullJournalName string `json:"fulljournalname"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

func (p *PubMed) Search(ctx context.Context, query string, limit int) ([]domain.Paper, error) {
	ids, err := p.esearch(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	papers, err := p.esummary(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("pubmed search: %w", err)
	}
	return papers, nil
}

func (p *PubMed) esearch(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("retmode", "json")
	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}
	endpoint := p.baseURL + "/esearch.fcgi?" + params.Encode()

	resp, err := doWithRetry(ctx, p.client, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	}, p.retries, p.backoff)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var search esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to parse esearch response: %w", err)
	}
	return search.ESearchResult.IDList, nil
}

func (p *PubMed) esummary(ctx context.Context, ids []string) ([]domain.Paper, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "json")
	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}
	endpoint := p.baseURL + "/esummary.fcgi?" + params.Encode()

	resp, err := doWithRetry(ctx, p.client, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	}, p.retries, p.backoff)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var summary esummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to parse esummary response: %w", err)
	}

	papers := make([]domain.Paper, 0, len(ids))
	for _, id := range ids {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		var rec esummaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		papers = append(papers, recordToPaper(id, rec))
	}
	return papers, nil
}

func recordToPaper(id string, rec esummaryRecord) domain.Paper {
	authors := make([]string, 0, len(rec.Authors))
	for _, au := range rec.Authors {
		if au.Name != "" {
			authors = append(authors, au.Name)
		}
	}

	return domain.Paper{
		ID:      "pmid:" + id,
		Title:   strings.TrimSpace(rec.Title),
		Authors: authors,
		Year:    pubDateYear(rec.PubDate),
		Venue:   rec.FullJournalName,
		URL:     "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
		Source:  "pubmed",
	}
}

// pubDateYear extracts the year from pubdate strings like "2024 Mar 18",
// "2023 Nov-Dec" or "2022".
func pubDateYear(pubDate string) int {
	fields := strings.Fields(pubDate)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return year
}
