package constants

import (
	"regexp"

	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/infra"
)

// GetExtractPatternsは、フィールド抽出器で使用するコンパイル済みの正規表現パターンを返します。
func GetExtractPatterns() infra.CompiledPatterns {
	return infra.CompiledPatterns{
		// 価格は 億 -> 万 -> 円 の優先順で照合する
		PriceOku: regexp.MustCompile(`([\d,]+)\s*億(?:\s*([\d,]+)\s*万)?`),
		PriceMan: regexp.MustCompile(`([\d,]+)\s*万`),
		PriceYen: regexp.MustCompile(`([\d,]+)\s*円`),

		// 面積はラベルと数値が隣接している場合のみ採用する
		LandArea:     regexp.MustCompile(`(?:土地面積|敷地面積|土地)[^\d]{0,12}([\d,]+(?:\.\d+)?)\s*(?:㎡|m²|m2|平米)`),
		BuildingArea: regexp.MustCompile(`(?:建物面積|延床面積|延べ床面積)[^\d]{0,12}([\d,]+(?:\.\d+)?)\s*(?:㎡|m²|m2|平米)`),

		// 築年はラベル付きを優先し、次に 〜年築 形式の単独表記を見る
		YearLabeled: regexp.MustCompile(`(?:築年月|建築年月|建築年|築)\s*[:：]?\s*(?:(昭和|平成|令和)\s*(\d{1,2})\s*年|(\d{4})\s*年)`),
		YearBare:    regexp.MustCompile(`(?:(昭和|平成|令和)\s*(\d{1,2})\s*年|(\d{4})\s*年)\s*(?:新?築|建築)`),
		AgeYears:    regexp.MustCompile(`築\s*(\d{1,2})\s*年`),

		// 「海」への徒歩・距離表現が近接している場合のみ海眺望スコア2を与える
		SeaProximity: []*regexp.Regexp{
			regexp.MustCompile(`(?:海|ビーチ)[^。.]{0,30}(?:徒歩|歩いて)\s*\d{1,3}\s*分`),
			regexp.MustCompile(`(?:徒歩|歩いて)\s*\d{1,3}\s*分[^。.]{0,30}(?:海|ビーチ)`),
			regexp.MustCompile(`(?:海|ビーチ)まで\s*[\d,]{1,6}\s*(?:m|ｍ|メートル)`),
		},

		// マンション判定は単語の部分一致ではなく複合マーカーを要求する
		MansionTitle: regexp.MustCompile(`のマンション情報|マンション.{0,10}情報|(?i:mansion.{0,20}(?:information|listing))|(?i:condo)`),
	}
}

// GetExtractLexiconは、抽出器が参照する語彙集合を返します。
func GetExtractLexicon() infra.Lexicon {
	return infra.Lexicon{
		// 和暦 -> 西暦変換の基準年 (元号元年 = 基準年 + 1)
		EraOffsets: map[string]int{
			"昭和": 1925,
			"平成": 1988,
			"令和": 2018,
		},

		CityStems: []infra.CityStem{
			{Stem: "東伊豆", City: model.HigashiIzu},
			{Stem: "南伊豆", City: model.MinamiIzu},
			{Stem: "下田", City: model.Shimoda},
			{Stem: "河津", City: model.Kawazu},
			{Stem: "賀茂郡", City: model.Kamo},
		},

		// 許可リスト外と明確に分かる自治体。検出したら救済せず却下する。
		ForeignCities: []string{
			"伊東市", "熱海市", "伊豆市", "伊豆の国市",
			"沼津市", "三島市", "富士市", "静岡市",
		},

		// 否定表現は常に最優先で評価する
		SeaNegations: []string{"海は見えません", "海眺望なし"},

		// スコア5: 海に面していることが明示されている
		Waterfront: []string{"オーシャンフロント", "ウォーターフロント", "目の前が海", "海前"},

		// スコア4: 海眺望の明示フレーズ
		SeaViewPhrases: []string{
			"オーシャンビュー", "シービュー", "ベイビュー",
			"海一望", "海を一望", "海が一望",
			"海を望", "海望", "海眺望",
			"海が見え", "海見え", "海の見え",
			"海近", "海側", "海沿い",
		},

		// スコア3: 海岸・湾の固有名詞
		NamedCoasts: []string{
			"白浜", "吉佐美", "入田", "多々戸", "弓ヶ浜", "今井浜",
			"相模湾", "太平洋", "伊豆七島",
		},

		SoldPhrases: []string{"成約", "商談中", "予約", "Sold", "Contracted", "Reserved", "済"},

		OnsenPositives: []string{"温泉付", "温泉引込", "温泉権利", "温泉利用権", "源泉", "かけ流し"},
		OnsenNegations: []string{"温泉なし", "温泉無"},

		LandTitleMarkers:  []string{"売地", "土地", "分譲地"},
		HouseTitleMarkers: []string{"の家情報", "戸建", "一戸建", "平屋"},
		HouseBodyMarkers:  []string{"戸建", "LDK", "築", "建物"},
		LandBodyMarkers:   []string{"売地", "建築条件"},
	}
}

// GetFeedCSVHeadersは、フィードのCSV出力で使用するヘッダーを返します。
func GetFeedCSVHeaders() []string {
	return []string{
		"ID", "ソース", "URL", "タイトル", "タイトル(英)",
		"種別", "自治体", "価格(円)", "土地面積(㎡)", "建物面積(㎡)",
		"築年", "築年数", "海眺望スコア", "温泉", "画像URL", "初出日時",
	}
}

const (
	// LogBatchCountは進捗ログを出す件数間隔です。
	LogBatchCount = 50
)
