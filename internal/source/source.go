package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
)

// PageContextは、取得レイヤーから詳細ページ1件とともに渡されるコンテキストです。
// HintedCityは検索URLやエリアコードから判明している自治体です。
type PageContext struct {
	URL        string
	HintedCity model.City
}

// Candidateは一覧ページから発見した詳細ページの候補です。
type Candidate struct {
	URL        string
	HintedCity model.City
}

// ParseResultはParseDetailの結果です。Listingがnilの場合、Reasonには
// 「正常にパースできたが掲載基準を満たさなかった」理由が入ります。
// 取得・解析そのものの失敗はParseDetailのerrorで返り、決して混同しません。
type ParseResult struct {
	Listing *model.Listing
	Reason  model.RejectReason
}

// Acceptedは掲載として採用されたかを返します。
func (r ParseResult) Accepted() bool {
	return r.Listing != nil
}

// Adapterはブローカーサイト1つ分の実装です。そのサイトのマークアップを
// フィールド抽出器に対応付け、ソース固有の掲載ポリシーを適用します。
type Adapter interface {
	// Nameは識別子 (例: izutaiyo)、Labelは表示名 (例: Izu Taiyo) です。
	Name() string
	Label() string

	// IndexURLsは走査する一覧・検索ページのURLを返します。
	IndexURLs() []string

	// DiscoverDetailURLsは一覧ページのHTMLから詳細ページ候補を抽出します。
	DiscoverDetailURLs(indexHTML, indexURL string) ([]Candidate, error)

	// NativeIDは詳細ページURLからソース固有の物件番号を取り出します。
	NativeID(pageURL string) (string, error)

	// ParseDetailは詳細ページのHTMLをListingへ変換します。
	ParseDetail(html string, pctx PageContext) (ParseResult, error)
}

// detailOptionsはサイトごとの抽出設定です。
type detailOptions struct {
	titleSelectors []string
	priceLabels    []string
}

// baseは全アダプター共通の抽出・ポリシー適用パイプラインです。
type base struct {
	name   string
	label  string
	cfg    config.SourceConfig
	parser infra.ListingParser
	logger logger.AppLogger
	now    func() time.Time
}

var addressLabels = []string{"所在地", "住所", "Location", "物件所在地", "エリア"}
var onsenLabels = []string{"温泉"}

// parseは詳細ページ1件を処理する共通パイプラインです。
// 所在地 -> 成約 -> 種別 -> 価格 -> 海眺望の順でポリシーを適用します。
func (b *base) parse(html, nativeID string, pctx PageContext, opts detailOptions) (ParseResult, error) {
	doc, err := infra.NewHTMLDocument(html)
	if err != nil {
		return ParseResult{}, err
	}

	title := doc.Title(opts.titleSelectors)
	if title == "" {
		// タイトルすら取れないページは崩れすぎている。取得失敗として扱う。
		return ParseResult{}, fmt.Errorf("タイトルを抽出できませんでした: %s", pctx.URL)
	}
	text := doc.Text()

	city, ok := b.resolveCity(doc, text, pctx.HintedCity)
	if !ok {
		return ParseResult{Reason: model.RejectLocation}, nil
	}

	if b.parser.IsSold(title, text) {
		return ParseResult{Reason: model.RejectSold}, nil
	}

	kind := b.parser.DecodeRecordKind(nativeID)
	ptype := b.parser.ClassifyPropertyType(title, text, kind)
	if ptype == model.Mansion {
		return ParseResult{Reason: model.RejectMansion}, nil
	}

	price := b.extractPrice(doc, text, opts.priceLabels)
	if price == nil {
		return ParseResult{Reason: model.RejectPrice}, nil
	}

	seaView := b.parser.ScoreSeaView(text)
	if seaView < b.cfg.MinSeaView {
		return ParseResult{Reason: model.RejectSeaView}, nil
	}

	yearBuilt := b.parser.ParseYearBuilt(text)
	fields := model.ExtractedFields{
		Title:           title,
		PriceJpy:        price,
		LandAreaSqm:     b.parser.ParseLandArea(text),
		BuildingAreaSqm: b.parser.ParseBuildingArea(text),
		YearBuilt:       yearBuilt,
		AgeYears:        b.parser.ParseAgeYears(text),
		City:            city,
		PropertyType:    ptype,
		SeaViewScore:    seaView,
		HasOnsen:        b.detectOnsen(doc, text),
		ImageURL:        doc.BestImage(pctx.URL),
	}

	listing := model.NewListing(model.ListingArgs{
		SourceName:  b.name,
		SourceLabel: b.label,
		NativeID:    nativeID,
		SourceURL:   pctx.URL,
		Fields:      fields,
		Now:         b.now(),
	})
	return ParseResult{Listing: &listing}, nil
}

// resolveCityは自治体を確定します。優先順は
// 所在地テーブル -> 検索コンテキスト -> 見出し -> 本文冒頭。
// 許可リスト外の自治体が所在地として明記されている場合は、検索コンテキストが
// あっても救済せず却下します。
func (b *base) resolveCity(doc *infra.HTMLDocument, text string, hinted model.City) (model.City, bool) {
	candidates := doc.LabeledCells(addressLabels)
	for _, c := range candidates {
		if city := b.parser.ParseCity(c); city != model.UnknownCity {
			return city, true
		}
	}
	for _, c := range candidates {
		if name, foreign := b.parser.DetectForeignCity(c); foreign {
			b.logger.Info("対象外の自治体のため除外します", "source", b.name, "city", name)
			return model.UnknownCity, false
		}
	}

	if hinted != model.UnknownCity {
		return hinted, true
	}

	for _, head := range doc.Headings() {
		if city := b.parser.ParseCity(head); city != model.UnknownCity {
			return city, true
		}
	}

	prefix := text
	if runes := []rune(text); len(runes) > 1000 {
		prefix = string(runes[:1000])
	}
	if city := b.parser.ParseCity(prefix); city != model.UnknownCity {
		return city, true
	}
	return model.UnknownCity, false
}

// extractPriceはラベル付きのテーブル行を優先し、なければ本文冒頭から価格を探します。
func (b *base) extractPrice(doc *infra.HTMLDocument, text string, labels []string) *int64 {
	for _, row := range doc.RowTexts() {
		for _, label := range labels {
			if !strings.Contains(row, label) {
				continue
			}
			if price := b.parser.ParsePrice(row); price != nil {
				return price
			}
		}
	}
	return b.parser.ParsePrice(text)
}

func (b *base) detectOnsen(doc *infra.HTMLDocument, text string) bool {
	explicit := ""
	if cells := doc.LabeledCells(onsenLabels); len(cells) > 0 {
		explicit = cells[len(cells)-1]
	}
	return b.parser.DetectOnsen(explicit, text)
}

// BuildAllは設定で有効化された全アダプターを優先度順に生成します。
func BuildAll(cfg config.RadarConfig, parser infra.ListingParser, log logger.AppLogger) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(cfg.Sources))
	for _, name := range cfg.PriorityOrder() {
		sc, err := cfg.Source(name)
		if err != nil {
			return nil, err
		}
		switch name {
		case "izutaiyo":
			adapters = append(adapters, NewIzuTaiyo(sc, parser, log))
		case "maple":
			adapters = append(adapters, NewMaple(sc, parser, log))
		case "aoba":
			adapters = append(adapters, NewAoba(sc, parser, log))
		default:
			return nil, fmt.Errorf("未知のソースです: %s", name)
		}
	}
	return adapters, nil
}
