package postgres

import (
	"context"
	"fmt"

	"github.com/mikiiiss/research-assistant/internal/domain"
	"github.com/pgvector/pgvector-go"
)

// PaperRepository provides the read path over the local papers table,
// including embedding similarity search via pgvector.
type PaperRepository struct {
	db *DB
}

// NewPaperRepository creates a new paper repository
func NewPaperRepository(db *DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// GetByIDs fetches papers by identifier, preserving no particular order.
func (r *PaperRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, abstract, authors, venue, published_year, citation_count, url
		FROM papers
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// SimilaritySearch returns the papers nearest to the query embedding by
// cosine distance, ordered by descending relevance.
func (r *PaperRepository) SimilaritySearch(ctx context.Context, embedding []float32, limit int) ([]domain.Paper, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, title, abstract, authors, venue, published_year, citation_count, url,
		       1 - (embedding <=> $1) AS relevance
		FROM papers
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run similarity search: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper
	for rows.Next() {
		var p domain.Paper
		var abstract, venue, url *string
		var year, citations *int
		if err := rows.Scan(&p.ID, &p.Title, &abstract, &p.Authors, &venue, &year, &citations, &url, &p.Relevance); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		fillOptional(&p, abstract, venue, url, year, citations)
		p.Source = "local"
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (domain.Paper, error) {
	var p domain.Paper
	var abstract, venue, url *string
	var year, citations *int
	if err := row.Scan(&p.ID, &p.Title, &abstract, &p.Authors, &venue, &year, &citations, &url); err != nil {
		return p, fmt.Errorf("failed to scan paper: %w", err)
	}
	fillOptional(&p, abstract, venue, url, year, citations)
	p.Source = "local"
	return p, nil
}

func fillOptional(p *domain.Paper, abstract, venue, url *string, year, citations *int) {
	if abstract != nil {
		p.Abstract = *abstract
	}
	if venue != nil {
		p.Venue = *venue
	}
	if url != nil {
		p.URL = *url
	}
	if year != nil {
		p.Year = *year
	}
	if citations != nil {
		p.CitationCount = *citations
	}
}
