package model

// Cityは収集対象エリアの自治体を表します。
// 許可リストは閉じた集合であり、ここにない自治体の物件は扱いません。
type City string

const (
	Shimoda     City = "下田市"
	Kawazu      City = "河津町"
	HigashiIzu  City = "東伊豆町"
	MinamiIzu   City = "南伊豆町"
	Kamo        City = "賀茂郡"
	UnknownCity City = ""
)

// Englishは自治体の英語表記を返します。
// 賀茂郡は歴史的経緯で南伊豆圏として扱います。
func (c City) English() string {
	switch c {
	case Shimoda:
		return "Shimoda"
	case Kawazu:
		return "Kawazu"
	case HigashiIzu:
		return "Higashi-Izu"
	case MinamiIzu, Kamo:
		return "Minami-Izu"
	default:
		return ""
	}
}

// AllCitiesは許可リストの全自治体を返します。
func AllCities() []City {
	return []City{Shimoda, Kawazu, HigashiIzu, MinamiIzu, Kamo}
}

// PropertyTypeは物件種別を表します。
type PropertyType string

const (
	House   PropertyType = "house"
	Land    PropertyType = "land"
	Mansion PropertyType = "mansion"
)

// RecordKindは物件番号の末尾記号から復元した種別です。
// 例: SMB392H の H は戸建を意味します。判別できない場合はUnknownKindを返します。
type RecordKind string

const (
	RecordHouse   RecordKind = "house"
	RecordLand    RecordKind = "land"
	RecordMansion RecordKind = "mansion"
	UnknownKind   RecordKind = "unknown"
)

// RejectReasonは、正常にパースできたものの掲載基準を満たさなかった理由を表します。
// 取得や解析そのものの失敗（リトライ対象）とは明確に区別します。
type RejectReason string

const (
	RejectNone      RejectReason = ""
	RejectLocation  RejectReason = "location"  // 対象外の自治体、または所在地不明
	RejectSold      RejectReason = "sold"      // 成約・商談中
	RejectMansion   RejectReason = "mansion"   // マンション・区分所有
	RejectSeaView   RejectReason = "sea_view"  // 海眺望スコアが閾値未満
	RejectPrice     RejectReason = "price"     // 価格を特定できない
	RejectDuplicate RejectReason = "duplicate" // 他ソースとの重複
)

// RejectReasonsは集計で使用する全理由を返します。
func RejectReasons() []RejectReason {
	return []RejectReason{
		RejectLocation,
		RejectSold,
		RejectMansion,
		RejectSeaView,
		RejectPrice,
		RejectDuplicate,
	}
}
