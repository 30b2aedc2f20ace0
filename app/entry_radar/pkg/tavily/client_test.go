package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/search"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tvly-key", r.Header.Get("Authorization"))

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Germany Retail market news", req.Query)
		assert.Equal(t, "news", req.Topic)
		assert.Equal(t, 5, req.MaxResults)
		assert.Equal(t, "basic", req.SearchDepth)

		_ = json.NewEncoder(w).Encode(SearchResponse{Results: []SearchResult{
			{Title: "Retail sales rise", URL: "https://example.com/a", Content: "Sales rose.", Score: 0.9, PublishedDate: "2025-01-02"},
		}})
	}))
	defer srv.Close()

	c := NewClient("tvly-key", WithEndpoint(srv.URL))
	resp, err := c.Search(context.Background(), &search.Request{Query: "Germany Retail market news", Topic: "news"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, search.Result{
		Title: "Retail sales rise", URL: "https://example.com/a", Content: "Sales rose.", Score: 0.9, PublishedDate: "2025-01-02",
	}, resp.Results[0])
}

func TestClient_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", WithEndpoint(srv.URL)).Search(context.Background(), &search.Request{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
