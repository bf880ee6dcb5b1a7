package model

import (
	"fmt"
	"time"
)

// ExtractedFieldsは、1ページ分のHTMLから抽出した型付きフィールドです。
// 全フィールドが「判定不能」を表現できるため、抽出器は決して失敗しません。
type ExtractedFields struct {
	Title           string
	PriceJpy        *int64
	LandAreaSqm     *float64
	BuildingAreaSqm *float64
	YearBuilt       *int
	AgeYears        float64
	City            City
	PropertyType    PropertyType
	SeaViewScore    int
	HasOnsen        bool
	ImageURL        string
}

// Listingは正規化済みの掲載1件を表します。
// IDはソース名と物件番号から決定され、ページ内容の変化では変わりません。
type Listing struct {
	ID            string       `json:"id"`
	Source        string       `json:"source"`
	SourceURL     string       `json:"sourceUrl"`
	Title         string       `json:"title"`
	TitleEn       string       `json:"titleEn"`
	PropertyType  PropertyType `json:"propertyType"`
	City          City         `json:"city"`
	PriceJpy      *int64       `json:"priceJpy"`
	LandSqm       *float64     `json:"landSqm,omitempty"`
	BuildingSqm   *float64     `json:"buildingSqm,omitempty"`
	YearBuilt     *int         `json:"yearBuilt,omitempty"`
	Age           float64      `json:"age,omitempty"`
	SeaViewScore  int          `json:"seaViewScore"`
	HasOnsen      bool         `json:"hasOnsen"`
	ImageURL      string       `json:"imageUrl,omitempty"`
	HighlightTags []string     `json:"highlightTags"`
	FirstSeen     time.Time    `json:"firstSeen"`
}

// ListingArgsは、Listingを生成するための引数を保持します。
type ListingArgs struct {
	SourceName  string // 例: izutaiyo
	SourceLabel string // 例: Izu Taiyo
	NativeID    string // ソース固有の物件番号
	SourceURL   string
	Fields      ExtractedFields
	Now         time.Time
}

// NewListingは抽出結果からListingを生成します。FirstSeenはここでは設定せず、
// 前回実行の出力と突き合わせるトラッカーが後から確定します。
func NewListing(args ListingArgs) Listing {
	age := args.Fields.AgeYears
	if args.Fields.YearBuilt != nil {
		age = float64(args.Now.Year() - *args.Fields.YearBuilt)
	}

	titleEn := fmt.Sprintf("%s Property", args.Fields.City.English())

	return Listing{
		ID:            fmt.Sprintf("%s-%s", args.SourceName, args.NativeID),
		Source:        args.SourceLabel,
		SourceURL:     args.SourceURL,
		Title:         args.Fields.Title,
		TitleEn:       titleEn,
		PropertyType:  args.Fields.PropertyType,
		City:          args.Fields.City,
		PriceJpy:      args.Fields.PriceJpy,
		LandSqm:       args.Fields.LandAreaSqm,
		BuildingSqm:   args.Fields.BuildingAreaSqm,
		YearBuilt:     args.Fields.YearBuilt,
		Age:           age,
		SeaViewScore:  args.Fields.SeaViewScore,
		HasOnsen:      args.Fields.HasOnsen,
		ImageURL:      args.Fields.ImageURL,
		HighlightTags: highlightTags(args.Fields, age),
	}
}

// highlightTagsはフロント表示用のタグを導出します。
func highlightTags(f ExtractedFields, age float64) []string {
	tags := make([]string, 0, 4)
	if f.SeaViewScore >= 4 {
		tags = append(tags, "ocean-view")
	} else if f.SeaViewScore >= 2 {
		tags = append(tags, "beach-walk")
	}
	if f.HasOnsen {
		tags = append(tags, "onsen")
	}
	if f.YearBuilt != nil && age <= 5 {
		tags = append(tags, "newly-built")
	}
	if f.PropertyType == Land {
		tags = append(tags, "land")
	}
	return tags
}

// FeedDocumentは最終出力となる1ドキュメントです。
type FeedDocument struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Listings    []Listing `json:"listings"`
}

// RunSummaryは1回の実行のソース別・却下理由別の集計です。
// グローバルなカウンタは持たず、呼び出しごとの結果から不変値として組み立てます。
type RunSummary struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Scanned     int                  `json:"scanned"`
	Saved       int                  `json:"saved"`
	Errors      int                  `json:"errors"`
	BySource    map[string]int       `json:"bySource"`
	Rejections  map[RejectReason]int `json:"rejections"`
}
