package source

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
)

var mapleSections = []string{"house", "estate"}

var mapleExcludeFragments = []string{"/page/", "/feed", "/category/", "/tag/", "/author/", "#"}

// MapleはメープルハウジングのWordPressサイト向けアダプターです。
// 物件は /estate_db/ 配下のスラッグ付き個別記事として公開されており、
// 所在地は本文から読み取るしかありません。
type Maple struct {
	base
}

func NewMaple(cfg config.SourceConfig, parser infra.ListingParser, log logger.AppLogger) *Maple {
	return &Maple{base: base{
		name:   "maple",
		label:  "Maple Housing",
		cfg:    cfg,
		parser: parser,
		logger: log,
		now:    time.Now,
	}}
}

func (a *Maple) Name() string  { return a.name }
func (a *Maple) Label() string { return a.label }

// IndexURLsは戸建・土地の各アーカイブを3ページ分返します。
func (a *Maple) IndexURLs() []string {
	urls := make([]string, 0, len(mapleSections)*3)
	for _, section := range mapleSections {
		urls = append(urls, fmt.Sprintf("%s/estate_db/%s/", a.cfg.BaseURL, section))
		for page := 2; page <= 3; page++ {
			urls = append(urls, fmt.Sprintf("%s/estate_db/%s/page/%d/", a.cfg.BaseURL, section, page))
		}
	}
	return urls
}

func (a *Maple) DiscoverDetailURLs(indexHTML, indexURL string) ([]Candidate, error) {
	doc, err := infra.NewHTMLDocument(indexHTML)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []Candidate
	for _, href := range doc.ExtractAttribute("article a[href], a[href]", "href") {
		resolved, err := resolveURL(indexURL, href)
		if err != nil {
			continue
		}
		if !a.isDetailURL(resolved) {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		candidates = append(candidates, Candidate{URL: resolved})
	}
	return candidates, nil
}

// isDetailURLはアーカイブ・フィード等の周辺リンクを除外し、
// /estate_db/<section>/<slug> 形式の個別記事だけを通します。
func (a *Maple) isDetailURL(pageURL string) bool {
	if !strings.Contains(pageURL, "/estate_db/") {
		return false
	}
	for _, fragment := range mapleExcludeFragments {
		if strings.Contains(pageURL, fragment) {
			return false
		}
	}
	for _, bucket := range a.cfg.ExcludeBuckets {
		if bucket != "" && strings.Contains(pageURL, bucket) {
			return false
		}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	parts := splitPathParts(parsed.Path)
	return len(parts) >= 3 && parts[0] == "estate_db"
}

// NativeIDはURL末尾のスラッグを物件番号として使います。
func (a *Maple) NativeID(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("URL %s のパースに失敗しました: %w", pageURL, err)
	}
	parts := splitPathParts(parsed.Path)
	if len(parts) == 0 {
		return "", fmt.Errorf("物件スラッグが見つかりません: %s", pageURL)
	}
	return parts[len(parts)-1], nil
}

func (a *Maple) ParseDetail(html string, pctx PageContext) (ParseResult, error) {
	nativeID, err := a.NativeID(pctx.URL)
	if err != nil {
		return ParseResult{}, err
	}
	return a.parse(html, nativeID, pctx, detailOptions{
		titleSelectors: []string{"h1.entry-title", "h1", ".property-title", "title"},
		priceLabels:    []string{"価格", "販売価格", "売買価格", "Price"},
	})
}

func splitPathParts(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
