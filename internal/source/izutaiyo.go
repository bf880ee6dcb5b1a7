package source

import (
	"fmt"
	"net/url"
	"regexp"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
)

// 検索パラメータの自治体コード
var izuTaiyoCityCodes = []struct {
	Code string
	City model.City
}{
	{"22219", model.Shimoda},
	{"22301", model.Kawazu},
	{"22302", model.HigashiIzu},
	{"22304", model.MinamiIzu},
}

// hpkind: 0=マンション(対象外) 1=戸建 2=土地
var izuTaiyoKinds = []int{1, 2}

var (
	izuTaiyoOnclickHpno   = regexp.MustCompile(`d\.php\?hpno=(\d+)`)
	izuTaiyoOnclickBunno  = regexp.MustCompile(`d\.php\?hpbunno=([^'"&]+)`)
	izuTaiyoDetailPattern = regexp.MustCompile(`d\.php\?(?:hpno|hpbunno)=`)
)

// IzuTaiyoは伊豆太陽のアダプターです。検索結果はonclick属性のJavaScriptで
// 詳細ページへ遷移するため、リンク発見はonclickの解析が主になります。
// 検索URLの自治体コードを所在地コンテキストとして信頼します。
type IzuTaiyo struct {
	base
}

func NewIzuTaiyo(cfg config.SourceConfig, parser infra.ListingParser, log logger.AppLogger) *IzuTaiyo {
	return &IzuTaiyo{base: base{
		name:   "izutaiyo",
		label:  "Izu Taiyo",
		cfg:    cfg,
		parser: parser,
		logger: log,
		now:    time.Now,
	}}
}

func (a *IzuTaiyo) Name() string  { return a.name }
func (a *IzuTaiyo) Label() string { return a.label }

func (a *IzuTaiyo) IndexURLs() []string {
	urls := make([]string, 0, len(izuTaiyoCityCodes)*len(izuTaiyoKinds))
	for _, cc := range izuTaiyoCityCodes {
		for _, kind := range izuTaiyoKinds {
			urls = append(urls, fmt.Sprintf("%s/tokusen.php?hpcity[]=%s&hpkind=%d", a.cfg.BaseURL, cc.Code, kind))
		}
	}
	return urls
}

func (a *IzuTaiyo) DiscoverDetailURLs(indexHTML, indexURL string) ([]Candidate, error) {
	doc, err := infra.NewHTMLDocument(indexHTML)
	if err != nil {
		return nil, err
	}

	hinted := a.hintedCityFromIndexURL(indexURL)
	seen := make(map[string]struct{})
	var candidates []Candidate

	add := func(detailURL string) {
		if _, dup := seen[detailURL]; dup {
			return
		}
		seen[detailURL] = struct{}{}
		candidates = append(candidates, Candidate{URL: detailURL, HintedCity: hinted})
	}

	// onclick属性から物件番号を拾う
	for _, onclick := range doc.ExtractAttribute("[onclick]", "onclick") {
		if m := izuTaiyoOnclickHpno.FindStringSubmatch(onclick); m != nil {
			add(fmt.Sprintf("%s/d.php?hpno=%s", a.cfg.BaseURL, m[1]))
		}
		if m := izuTaiyoOnclickBunno.FindStringSubmatch(onclick); m != nil {
			add(fmt.Sprintf("%s/d.php?hpbunno=%s", a.cfg.BaseURL, m[1]))
		}
	}

	// 直接リンクも併用する
	for _, href := range doc.ExtractAttribute("a[href]", "href") {
		if !izuTaiyoDetailPattern.MatchString(href) {
			continue
		}
		resolved, err := resolveURL(indexURL, href)
		if err != nil {
			a.logger.Warn("リンクの解決に失敗しました", "source", a.name, "href", href, "error", err)
			continue
		}
		add(resolved)
	}

	return candidates, nil
}

// NativeIDは d.php?hpno=SMB392H のようなURLから物件番号を取り出します。
func (a *IzuTaiyo) NativeID(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("URL %s のパースに失敗しました: %w", pageURL, err)
	}
	q := parsed.Query()
	if id := q.Get("hpno"); id != "" {
		return id, nil
	}
	if id := q.Get("hpbunno"); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("物件番号が見つかりません: %s", pageURL)
}

func (a *IzuTaiyo) ParseDetail(html string, pctx PageContext) (ParseResult, error) {
	nativeID, err := a.NativeID(pctx.URL)
	if err != nil {
		return ParseResult{}, err
	}
	return a.parse(html, nativeID, pctx, detailOptions{
		titleSelectors: []string{"h1"},
		priceLabels:    []string{"価格", "販売価格", "売買価格", "Price"},
	})
}

func (a *IzuTaiyo) hintedCityFromIndexURL(indexURL string) model.City {
	parsed, err := url.Parse(indexURL)
	if err != nil {
		return model.UnknownCity
	}
	code := parsed.Query().Get("hpcity[]")
	for _, cc := range izuTaiyoCityCodes {
		if cc.Code == code {
			return cc.City
		}
	}
	return model.UnknownCity
}

// resolveURLは相対リンクを基準URLで絶対化します。
func resolveURL(baseURL, target string) (string, error) {
	parsed, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	return parsedBase.ResolveReference(parsed).String(), nil
}
