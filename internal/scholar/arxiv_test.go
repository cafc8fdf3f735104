package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiiiss/research-assistant/internal/config"
)

const sampleAtomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2403.12345v2</id>
    <title>Attention  Is
      All You Need, Revisited</title>
    <summary>We revisit the transformer
      architecture.</summary>
    <published>2024-03-18T17:59:59Z</published>
    <author><name>Jane Doe</name></author>
    <author><name>John Smith</name></author>
    <link href="http://arxiv.org/abs/2403.12345v2" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func TestArxivSearchParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:transformers", r.URL.Query().Get("search_query"))
		assert.Equal(t, "10", r.URL.Query().Get("max_results"))
		w.Write([]byte(sampleAtomFeed))
	}))
	defer server.Close()

	client := NewArxiv(config.ScholarConfig{
		RequestTimeout: 5 * time.Second,
		Arxiv:          config.ScholarProviderConfig{BaseURL: server.URL},
	})

	papers, err := client.Search(context.Background(), "transformers", 10)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "arxiv:2403.12345v2", p.ID)
	assert.Equal(t, "Attention Is All You Need, Revisited", p.Title)
	assert.Equal(t, "We revisit the transformer architecture.", p.Abstract)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, p.Authors)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, "arXiv", p.Venue)
	assert.Equal(t, "arxiv", p.Source)
}

func TestArxivRetriesOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleAtomFeed))
	}))
	defer server.Close()

	client := NewArxiv(config.ScholarConfig{
		RequestTimeout: 5 * time.Second,
		Retries:        2,
		RetryBackoff:   time.Millisecond,
		Arxiv:          config.ScholarProviderConfig{BaseURL: server.URL},
	})

	papers, err := client.Search(context.Background(), "transformers", 10)
	require.NoError(t, err)
	assert.Len(t, papers, 1)
	assert.Equal(t, 2, calls)
}
