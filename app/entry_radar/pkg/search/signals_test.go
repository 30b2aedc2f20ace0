package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	got  *Request
	resp *Response
	err  error
}

func (s *stubSearcher) Search(_ context.Context, req *Request) (*Response, error) {
	s.got = req
	return s.resp, s.err
}

func TestNewCollector_NilSearcher(t *testing.T) {
	assert.Nil(t, NewCollector(nil, 5))
}

func TestCollector_MarketSignals(t *testing.T) {
	long := strings.Repeat("x", maxContentLen+50)
	stub := &stubSearcher{resp: &Response{Results: []Result{
		{Title: "Short", URL: "https://www.example.com/short", Content: "tiny", PublishedDate: "2025-01-02"},
		{Title: "", URL: "https://example.com/untitled", Content: "skipped"},
		{Title: "Long", URL: "https://news.example.org/long", Content: long},
		{Title: "Extra", URL: "https://example.com/extra", Content: strings.Repeat("y", minSnippetLen)},
	}}}

	var fetched []string
	c := NewCollector(stub, 2,
		WithClock(func() time.Time { return time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC) }),
		WithFetcher(func(_ context.Context, link string) (string, error) {
			fetched = append(fetched, link)
			return "Full article text about retail growth.", nil
		}),
	)

	arts, err := c.MarketSignals(context.Background(), "Germany", "Retail")
	require.NoError(t, err)

	assert.Equal(t, "Germany Retail market news", stub.got.Query)
	assert.Equal(t, "news", stub.got.Topic)
	assert.Equal(t, "2025-03-01", stub.got.StartDate)
	assert.Equal(t, "2025-03-31", stub.got.EndDate)

	require.Len(t, arts, 2)
	assert.Equal(t, "Full article text about retail growth.", arts[0].Content)
	assert.Equal(t, "example.com", arts[0].Source)
	assert.Equal(t, "2025-01-02", arts[0].PubDate)
	assert.Len(t, arts[1].Content, maxContentLen)
	assert.Equal(t, "news.example.org", arts[1].Source)
	assert.Equal(t, []string{"https://www.example.com/short"}, fetched)
}

func TestCollector_TruncatesOnRuneBoundary(t *testing.T) {
	content := "x" + strings.Repeat("ü", maxContentLen)
	stub := &stubSearcher{resp: &Response{Results: []Result{{Title: "Märkte", URL: "https://example.de/a", Content: content}}}}
	c := NewCollector(stub, 5, WithFetcher(nil))

	arts, err := c.MarketSignals(context.Background(), "Germany", "Retail")
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.True(t, utf8.ValidString(arts[0].Content))
	assert.Len(t, arts[0].Content, maxContentLen-1)
	assert.True(t, strings.HasPrefix(content, arts[0].Content))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "日", truncate("日本", 4))
	assert.Equal(t, "", truncate("日本", 2))
}

func TestCollector_FetchFailureKeepsSnippet(t *testing.T) {
	stub := &stubSearcher{resp: &Response{Results: []Result{{Title: "T", URL: "https://example.com", Content: "snippet"}}}}
	c := NewCollector(stub, 5, WithFetcher(func(context.Context, string) (string, error) {
		return "", errors.New("403")
	}))

	arts, err := c.MarketSignals(context.Background(), "Brazil", "Retail")
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "snippet", arts[0].Content)
}

func TestCollector_SearchError(t *testing.T) {
	c := NewCollector(&stubSearcher{err: errors.New("boom")}, 5, WithFetcher(nil))
	_, err := c.MarketSignals(context.Background(), "Brazil", "Retail")
	assert.ErrorContains(t, err, "search Brazil: boom")
}
