package domain

import "context"

// Paper is the common shape for papers from the local repository and from
// external literature providers.
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Abstract      string   `json:"abstract,omitempty"`
	Authors       []string `json:"authors,omitempty"`
	Year          int      `json:"year,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	CitationCount int      `json:"citation_count"`
	URL           string   `json:"url,omitempty"`
	Relevance     float64  `json:"relevance,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// PaperRepository defines the read path over the local paper store.
type PaperRepository interface {
	GetByIDs(ctx context.Context, ids []string) ([]Paper, error)
}

// PaperSearcher performs embedding similarity search over the local paper
// store, ordered by descending relevance.
type PaperSearcher interface {
	SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]Paper, error)
}
