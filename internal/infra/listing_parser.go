package infra

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nrad-K/izu-radar/internal/domain/model"
	"golang.org/x/text/width"
)

// ListingParserは、整形済みページテキストから型付きフィールドを取り出す純粋関数群です。
// どのメソッドも失敗せず、判定できない場合はnil・ゼロ値・Unknownを返します。
type ListingParser interface {
	ParsePrice(text string) *int64
	ParseLandArea(text string) *float64
	ParseBuildingArea(text string) *float64
	ParseYearBuilt(text string) *int
	ParseAgeYears(text string) float64
	ParseCity(text string) model.City
	DetectForeignCity(text string) (string, bool)
	ScoreSeaView(text string) int
	ClassifyPropertyType(title, body string, kind model.RecordKind) model.PropertyType
	DetectOnsen(explicit, body string) bool
	DecodeRecordKind(nativeID string) model.RecordKind
	IsSold(title, body string) bool
}

// CompiledPatternsは抽出器で使うコンパイル済み正規表現をまとめます。
type CompiledPatterns struct {
	PriceOku     *regexp.Regexp
	PriceMan     *regexp.Regexp
	PriceYen     *regexp.Regexp
	LandArea     *regexp.Regexp
	BuildingArea *regexp.Regexp
	YearLabeled  *regexp.Regexp
	YearBare     *regexp.Regexp
	AgeYears     *regexp.Regexp
	SeaProximity []*regexp.Regexp
	MansionTitle *regexp.Regexp
}

// CityStemは自治体名の照合語幹です。表記ゆれ（下田市/下田）を吸収します。
type CityStem struct {
	Stem string
	City model.City
}

// Lexiconは抽出器が参照する語彙集合をまとめます。
type Lexicon struct {
	EraOffsets        map[string]int
	CityStems         []CityStem
	ForeignCities     []string
	SeaNegations      []string
	Waterfront        []string
	SeaViewPhrases    []string
	NamedCoasts       []string
	SoldPhrases       []string
	OnsenPositives    []string
	OnsenNegations    []string
	LandTitleMarkers  []string
	HouseTitleMarkers []string
	HouseBodyMarkers  []string
	LandBodyMarkers   []string
}

const (
	// 価格の探索はページ先頭の一定範囲に限定する。電話番号や資本金など
	// 無関係な数字列との連結を防ぐため、全文は決して見ない。
	priceWindowRunes = 1000

	// 成約判定はタイトルと本文冒頭だけを見る
	soldWindowRunes = 200

	// これを超える価格はパターンに一致していても棄却する
	maxSanePriceJpy = 2_000_000_000
)

type listingParser struct {
	patterns CompiledPatterns
	lexicon  Lexicon
	now      func() time.Time
}

func NewListingParser(patterns CompiledPatterns, lexicon Lexicon) *listingParser {
	return &listingParser{
		patterns: patterns,
		lexicon:  lexicon,
		now:      time.Now,
	}
}

// ParsePriceは「1億2800万円」「3,500万円」「12000000円」の順で価格を解釈します。
// 探索範囲を超えた一致や上限を超える金額はnilを返します。
func (p *listingParser) ParsePrice(text string) *int64 {
	t := p.normalize(text)
	t = truncateRunes(t, priceWindowRunes)

	if m := p.patterns.PriceOku.FindStringSubmatch(t); m != nil {
		price := digitsToInt64(m[1]) * 100_000_000
		if m[2] != "" {
			price += digitsToInt64(m[2]) * 10_000
		}
		return sanePrice(price)
	}
	if m := p.patterns.PriceMan.FindStringSubmatch(t); m != nil {
		return sanePrice(digitsToInt64(m[1]) * 10_000)
	}
	if m := p.patterns.PriceYen.FindStringSubmatch(t); m != nil {
		return sanePrice(digitsToInt64(m[1]))
	}
	return nil
}

func sanePrice(price int64) *int64 {
	if price <= 0 || price > maxSanePriceJpy {
		return nil
	}
	return &price
}

// ParseLandAreaは土地・敷地面積を抽出します。ラベルと数値が隣接しない場合はnilです。
func (p *listingParser) ParseLandArea(text string) *float64 {
	return p.parseArea(p.patterns.LandArea, text)
}

// ParseBuildingAreaは建物・延床面積を抽出します。
func (p *listingParser) ParseBuildingArea(text string) *float64 {
	return p.parseArea(p.patterns.BuildingArea, text)
}

func (p *listingParser) parseArea(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(p.normalize(text))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// ParseYearBuiltは築年を西暦で返します。「築年月」等のラベルに隣接した表記を
// 最優先し、見つからなければ「〜年築」形式の単独表記を探します。
// 和暦は元号ごとの基準年で西暦に変換します。
func (p *listingParser) ParseYearBuilt(text string) *int {
	t := p.normalize(text)

	if y := p.yearFromMatch(p.patterns.YearLabeled.FindStringSubmatch(t)); y != nil {
		return y
	}
	return p.yearFromMatch(p.patterns.YearBare.FindStringSubmatch(t))
}

func (p *listingParser) yearFromMatch(m []string) *int {
	if m == nil {
		return nil
	}
	// グループ: 1=元号 2=和暦年 3=西暦年
	if m[3] != "" {
		y, err := strconv.Atoi(m[3])
		if err != nil {
			return nil
		}
		return p.saneYear(y)
	}
	offset, ok := p.lexicon.EraOffsets[m[1]]
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil
	}
	return p.saneYear(offset + n)
}

func (p *listingParser) saneYear(y int) *int {
	if y < 1925 || y > p.now().Year()+1 {
		return nil
	}
	return &y
}

// ParseAgeYearsは「築15年」のような築年数の直接表記を返します。見つからなければ0です。
func (p *listingParser) ParseAgeYears(text string) float64 {
	m := p.patterns.AgeYears.FindStringSubmatch(p.normalize(text))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return float64(n)
}

// ParseCityはテキストを許可リストの自治体に正規化します。
// 名称内に全角スペースが挟まっていても照合できるよう、空白を全て除去して比較します。
// 一致しない場合はUnknownCityを返します（許可リスト外の検出はDetectForeignCity）。
func (p *listingParser) ParseCity(text string) model.City {
	compact := stripAllSpace(p.normalize(text))
	if compact == "" {
		return model.UnknownCity
	}
	for _, cs := range p.lexicon.CityStems {
		if strings.Contains(compact, cs.Stem) {
			return cs.City
		}
	}
	return model.UnknownCity
}

// DetectForeignCityは、許可リスト外と明確に分かる自治体名を検出します。
// 「不明」と「明確に別の自治体」は区別され、後者は呼び出し側の文脈でも救済されません。
func (p *listingParser) DetectForeignCity(text string) (string, bool) {
	compact := stripAllSpace(p.normalize(text))
	for _, name := range p.lexicon.ForeignCities {
		if strings.Contains(compact, name) {
			return name, true
		}
	}
	return "", false
}

// ScoreSeaViewは海眺望の確度を0〜5で返します。否定表現が常に勝ちます。
//
//	5: 海に面していることが明示 (オーシャンフロント等)
//	4: 眺望の明示フレーズ (海一望、オーシャンビュー等)
//	3: 海岸・湾の固有名詞 (白浜、相模湾等)
//	2: 「海」への徒歩・距離表現が近接
//	0: それ以外、または否定表現あり
func (p *listingParser) ScoreSeaView(text string) int {
	t := p.normalize(text)

	for _, neg := range p.lexicon.SeaNegations {
		if strings.Contains(t, neg) {
			return 0
		}
	}
	if containsAny(t, p.lexicon.Waterfront) {
		return 5
	}
	if containsAny(t, p.lexicon.SeaViewPhrases) {
		return 4
	}
	if containsAny(t, p.lexicon.NamedCoasts) {
		return 3
	}
	for _, re := range p.patterns.SeaProximity {
		if re.MatchString(t) {
			return 2
		}
	}
	return 0
}

// ClassifyPropertyTypeは物件種別を判定します。タイトルの語が本文の語より優先され、
// マンション判定には複合マーカー（専用カテゴリまたはタイトル定型句）を要求します。
// ページ中の宣伝文に「マンション」が現れるだけでは判定しません。
func (p *listingParser) ClassifyPropertyType(title, body string, kind model.RecordKind) model.PropertyType {
	t := p.normalize(title)
	b := p.normalize(body)

	// 1. タイトルの明示マーカー
	if containsAny(t, p.lexicon.LandTitleMarkers) {
		return model.Land
	}
	if p.patterns.MansionTitle.MatchString(t) {
		return model.Mansion
	}
	if containsAny(t, p.lexicon.HouseTitleMarkers) {
		return model.House
	}

	// 2. ソース側のカテゴリ（物件番号の記号）
	switch kind {
	case model.RecordHouse:
		return model.House
	case model.RecordLand:
		return model.Land
	case model.RecordMansion:
		return model.Mansion
	}

	// 3. 本文の語
	if containsAny(b, p.lexicon.LandBodyMarkers) && !containsAny(b, p.lexicon.HouseBodyMarkers) {
		return model.Land
	}
	return model.House
}

// DetectOnsenは温泉の有無を判定します。明示フィールドの値が最優先で、
// 本文照合では否定表現が肯定表現に常に勝ちます。
func (p *listingParser) DetectOnsen(explicit, body string) bool {
	if e := stripAllSpace(p.normalize(explicit)); e != "" {
		if strings.Contains(e, "無") || strings.Contains(e, "なし") {
			return false
		}
		if strings.Contains(e, "有") || strings.Contains(e, "あり") || strings.Contains(e, "付") {
			return true
		}
	}

	b := p.normalize(body)
	for _, neg := range p.lexicon.OnsenNegations {
		if strings.Contains(b, neg) {
			return false
		}
	}
	return containsAny(b, p.lexicon.OnsenPositives)
}

// DecodeRecordKindは物件番号の末尾記号から種別を復元します。
// 例: SMB392H -> house。対応しない記号はUnknownKindです。
func (p *listingParser) DecodeRecordKind(nativeID string) model.RecordKind {
	id := strings.TrimSpace(nativeID)
	if id == "" {
		return model.UnknownKind
	}
	runes := []rune(id)
	switch unicode.ToUpper(runes[len(runes)-1]) {
	case 'H':
		return model.RecordHouse
	case 'M':
		return model.RecordMansion
	case 'T':
		return model.RecordLand
	default:
		return model.UnknownKind
	}
}

// IsSoldは成約・商談中の掲載かどうかを判定します。
// タイトルと本文冒頭のみを対象とし、空白を除去してから照合します。
func (p *listingParser) IsSold(title, body string) bool {
	combined := p.normalize(title) + " " + truncateRunes(p.normalize(body), soldWindowRunes)
	combined = stripAllSpace(combined)
	return containsAny(combined, p.lexicon.SoldPhrases)
}

// normalizeは全角英数記号を半角へ畳み込み、前後の空白と制御文字を除去します。
func (p *listingParser) normalize(s string) string {
	s = width.Fold.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func stripAllSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func digitsToInt64(s string) int64 {
	clean := strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
