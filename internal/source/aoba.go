package source

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
)

// URLに含まれるエリアコード。ファイル名の先頭が ao + 自治体コード になっている。
var aobaAreaCodes = []struct {
	Code string
	City model.City
}{
	{"ao22219", model.Shimoda},
	{"ao22301", model.Kawazu},
	{"ao22302", model.HigashiIzu},
	{"ao22304", model.MinamiIzu},
}

// Aobaはあおばリゾートのアダプターです。静的HTMLのサイトで、詳細ページは
// roomを含む .html の固定ファイルです。エリアコードが対象外の自治体を指す
// ページは設定のexclude_bucketsで発見段階から除外します。
type Aoba struct {
	base
}

func NewAoba(cfg config.SourceConfig, parser infra.ListingParser, log logger.AppLogger) *Aoba {
	return &Aoba{base: base{
		name:   "aoba",
		label:  "Aoba Resort",
		cfg:    cfg,
		parser: parser,
		logger: log,
		now:    time.Now,
	}}
}

func (a *Aoba) Name() string  { return a.name }
func (a *Aoba) Label() string { return a.label }

func (a *Aoba) IndexURLs() []string {
	return []string{
		a.cfg.BaseURL + "/house/",
		a.cfg.BaseURL + "/land/",
	}
}

func (a *Aoba) DiscoverDetailURLs(indexHTML, indexURL string) ([]Candidate, error) {
	doc, err := infra.NewHTMLDocument(indexHTML)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var candidates []Candidate
	for _, href := range doc.ExtractAttribute("a[href]", "href") {
		resolved, err := resolveURL(indexURL, href)
		if err != nil {
			continue
		}
		if !strings.Contains(resolved, "room") || !strings.HasSuffix(resolved, ".html") {
			continue
		}
		if a.isExcluded(resolved) {
			continue
		}
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		candidates = append(candidates, Candidate{URL: resolved, HintedCity: hintedCityFromAobaURL(resolved)})
	}
	return candidates, nil
}

func (a *Aoba) isExcluded(pageURL string) bool {
	for _, bucket := range a.cfg.ExcludeBuckets {
		if bucket != "" && strings.Contains(pageURL, bucket) {
			return true
		}
	}
	return false
}

// NativeIDはファイル名から拡張子を除いたものです (例: ao22219room101)。
func (a *Aoba) NativeID(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("URL %s のパースに失敗しました: %w", pageURL, err)
	}
	name := strings.TrimSuffix(path.Base(parsed.Path), ".html")
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("物件番号が見つかりません: %s", pageURL)
	}
	return name, nil
}

func (a *Aoba) ParseDetail(html string, pctx PageContext) (ParseResult, error) {
	nativeID, err := a.NativeID(pctx.URL)
	if err != nil {
		return ParseResult{}, err
	}
	if pctx.HintedCity == model.UnknownCity {
		pctx.HintedCity = hintedCityFromAobaURL(pctx.URL)
	}
	return a.parse(html, nativeID, pctx, detailOptions{
		titleSelectors: []string{"h2", "h1", ".property-title", ".entry-title", "title"},
		priceLabels:    []string{"価格", "販売価格", "売買価格", "Price"},
	})
}

func hintedCityFromAobaURL(pageURL string) model.City {
	for _, ac := range aobaAreaCodes {
		if strings.Contains(pageURL, ac.Code) {
			return ac.City
		}
	}
	return model.UnknownCity
}
