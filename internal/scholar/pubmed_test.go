package scholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikiiiss/research-assistant/internal/config"
)

func TestPubMedSearchTwoStep(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			assert.Equal(t, "pubmed", r.URL.Query().Get("db"))
			assert.Equal(t, "crispr therapy", r.URL.Query().Get("term"))
			w.Write([]byte(`{"esearchresult":{"idlist":["11111","22222"]}}`))
		case strings.HasSuffix(r.URL.Path, "/esummary.fcgi"):
			assert.Equal(t, "11111,22222", r.URL.Query().Get("id"))
			w.Write([]byte(`{"result":{
				"uids":["11111","22222"],
				"11111":{"title":"CRISPR in the clinic","pubdate":"2024 Mar 18","fulljournalname":"Nature Medicine","authors":[{"name":"Doe J"}]},
				"22222":{"title":"Gene editing review","pubdate":"2023 Nov-Dec","fulljournalname":"Cell","authors":[{"name":"Smith A"},{"name":"Lee B"}]}
			}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewPubMed(config.ScholarConfig{
		RequestTimeout: 5 * time.Second,
		PubMed:         config.ScholarProviderConfig{BaseURL: server.URL},
	})

	papers, err := client.Search(context.Background(), "crispr therapy", 10)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	assert.Equal(t, "pmid:11111", papers[0].ID)
	assert.Equal(t, "CRISPR in the clinic", papers[0].Title)
	assert.Equal(t, 2024, papers[0].Year)
	assert.Equal(t, "Nature Medicine", papers[0].Venue)
	assert.Equal(t, []string{"Doe J"}, papers[0].Authors)
	assert.Equal(t, "pubmed", papers[0].Source)

	assert.Equal(t, "pmid:22222", papers[1].ID)
	assert.Equal(t, 2023, papers[1].Year)
}

func TestPubMedSearchNoHits(t *testing.T) {
	var summaryCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/esummary.fcgi") {
			summaryCalled = true
		}
		w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	}))
	defer server.Close()

	client := NewPubMed(config.ScholarConfig{
		RequestTimeout: 5 * time.Second,
		PubMed:         config.ScholarProviderConfig{BaseURL: server.URL},
	})

	papers, err := client.Search(context.Background(), "nonexistent topic", 10)
	require.NoError(t, err)
	assert.Empty(t, papers)
	assert.False(t, summaryCalled)
}

func TestPubDateYear(t *testing.T) {
	assert.Equal(t, 2024, pubDateYear("2024 Mar 18"))
	assert.Equal(t, 2022, pubDateYear("2022"))
	assert.Equal(t, 0, pubDateYear(""))
	assert.Equal(t, 0, pubDateYear("Spring 2020"))
}
