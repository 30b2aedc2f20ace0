package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/entry_radar/app/entry_radar/pkg/logger"
	dm "github.com/iWorld-y/entry_radar/app/entry_radar/pkg/model"
)

const (
	// 摘要短于该长度时抓取正文
	minSnippetLen = 300
	// 单篇文章进入提示词的最大长度
	maxContentLen = 1200
	// 检索最近多少天的新闻
	lookbackDays = 30
)

// FetchFunc 抓取网页正文
type FetchFunc func(ctx context.Context, link string) (string, error)

// Collector 为单个市场收集近期新闻信号
type Collector struct {
	searcher   Searcher
	maxResults int
	fetch      FetchFunc
	now        func() time.Time
}

// CollectorOption 收集器选项
type CollectorOption func(*Collector)

// WithFetcher 替换正文抓取函数，为 nil 时只使用搜索摘要
func WithFetcher(f FetchFunc) CollectorOption {
	return func(c *Collector) { c.fetch = f }
}

// WithClock 替换时间来源
func WithClock(now func() time.Time) CollectorOption {
	return func(c *Collector) { c.now = now }
}

// NewCollector 创建收集器，searcher 为 nil 时返回 nil
func NewCollector(s Searcher, maxResults int, opts ...CollectorOption) *Collector {
	if s == nil {
		return nil
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	c := &Collector{
		searcher:   s,
		maxResults: maxResults,
		fetch:      FetchReadable,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query 市场信号的检索语句
func Query(country, industry string) string {
	return fmt.Sprintf("%s %s market news", country, industry)
}

// MarketSignals 检索并整理一个市场的近期新闻
func (c *Collector) MarketSignals(ctx context.Context, country, industry string) ([]dm.Article, error) {
	now := c.now()
	resp, err := c.searcher.Search(ctx, &Request{
		Query:      Query(country, industry),
		Topic:      "news",
		MaxResults: c.maxResults,
		StartDate:  now.AddDate(0, 0, -lookbackDays).Format(time.DateOnly),
		EndDate:    now.Format(time.DateOnly),
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", country, err)
	}

	var articles []dm.Article
	for _, item := range resp.Results {
		if item.URL == "" || item.Title == "" {
			continue
		}
		content := strings.TrimSpace(item.Content)
		if len(content) < minSnippetLen && c.fetch != nil {
			fetched, err := c.fetch(ctx, item.URL)
			if err != nil {
				logger.Log.Debugf("抓取正文失败 [%s]: %v", item.URL, err)
			} else if fetched = strings.TrimSpace(fetched); len(fetched) > len(content) {
				content = fetched
			}
		}
		content = truncate(content, maxContentLen)
		articles = append(articles, dm.Article{
			Title:   item.Title,
			Link:    item.URL,
			Source:  host(item.URL),
			PubDate: item.PublishedDate,
			Content: content,
		})
		if len(articles) >= c.maxResults {
			break
		}
	}
	logger.Log.Debugf("市场 [%s] 收集到 %d 条信号", country, len(articles))
	return articles, nil
}

// FetchReadable 使用 readability 抓取网页正文
func FetchReadable(ctx context.Context, link string) (string, error) {
	timeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}
	article, err := readability.FromURL(link, timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func host(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// truncate 截断到不超过 n 字节，不拆开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
