package infra

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/logger"
	"golang.org/x/time/rate"
)

// PageClientは、全ソースで共通の取得クライアントです。
// ホストごとのレート制限と、指数バックオフ+ジッターのリトライを備えます。
// ここで失敗したページは「取得失敗」であり、掲載基準による却下とは別物です。
type PageClient interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

type pageClient struct {
	client   *http.Client
	cfg      config.FetchConfig
	ua       string
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	logger   logger.AppLogger
}

func NewPageClient(cfg config.FetchConfig, userAgent string, log logger.AppLogger) *pageClient {
	return &pageClient{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		cfg:      cfg,
		ua:       userAgent,
		limiters: make(map[string]*rate.Limiter),
		logger:   log,
	}
}

// Fetchは指定URLのHTMLを取得します。5xxとネットワークエラーはリトライし、
// 4xxは恒久的な失敗として即座に返します。
func (c *pageClient) Fetch(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("URL %s のパースに失敗しました: %w", pageURL, err)
	}

	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryCount; attempt++ {
		if err := c.limiter(parsed.Host).Wait(ctx); err != nil {
			return "", fmt.Errorf("レート制限の待機中に中断されました: %w", err)
		}

		html, retryable, err := c.fetchOnce(ctx, pageURL)
		if err == nil {
			return html, nil
		}
		lastErr = err
		if !retryable {
			break
		}

		// 指数バックオフ + ジッター
		wait := time.Duration(1<<attempt)*time.Second + time.Duration(rand.IntN(1000))*time.Millisecond
		c.logger.Warn("取得をリトライします", "url", pageURL, "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("ページ %s の取得に失敗しました: %w", pageURL, lastErr)
}

func (c *pageClient) fetchOnce(ctx context.Context, pageURL string) (html string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("リクエストの生成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
		return "", retryable, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("レスポンスの読み込みに失敗しました: %w", err)
	}
	return string(body), false, nil
}

func (c *pageClient) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(c.cfg.RequestsPerSecond), c.cfg.Burst)
	c.limiters[host] = l
	return l
}
