package model

import "sort"

// priceBucketYenは近似指紋の価格丸め幅です。10万円単位で同一視します。
const priceBucketYen = 100_000

// Fingerprintは、別ソースに再掲載された同一物件を検出するための近似キーです。
// IDではありません。同一ソース内で指紋が衝突しても重複とはみなしません。
type Fingerprint struct {
	City         City
	PropertyType PropertyType
	PriceBucket  int64
}

// NewFingerprintはListingから指紋を計算します。
// 価格不明の掲載は掲載基準で先に却下されるため、防御的に-1のバケットへ落とします。
func NewFingerprint(l Listing) Fingerprint {
	bucket := int64(-1)
	if l.PriceJpy != nil {
		bucket = *l.PriceJpy / priceBucketYen
	}
	return Fingerprint{
		City:         l.City,
		PropertyType: l.PropertyType,
		PriceBucket:  bucket,
	}
}

// Deduplicateは全ソースの抽出が終わった後に一度だけ実行する、終端の絞り込みです。
// まずIDで一意化します。同じ詳細ページが表記ゆれURL（末尾スラッシュの有無など）で
// 複数ジョブになっても、IDはソース名と物件番号から決定されるためここで収束します。
// 次にpriorityの並び順（先頭が最優先）でソースごとに処理し、指紋のスロットを最初に
// 取った掲載が勝ちます。後続の別ソース掲載は落とし、同一ソース掲載は常に残します。
// 取りこぼし（偽陰性）は許容し、別物件の誤削除（偽陽性）を避ける保守的な方式です。
func Deduplicate(listings []Listing, priority []string) (kept []Listing, dropped []Listing) {
	rank := make(map[string]int, len(priority))
	for i, name := range priority {
		rank[name] = i
	}

	ordered := make([]Listing, len(listings))
	copy(ordered, listings)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iOK := rank[ordered[i].Source]
		rj, jOK := rank[ordered[j].Source]
		if iOK != jOK {
			return iOK // 優先度未定義のソースは末尾に回す
		}
		return ri < rj
	})

	claimed := make(map[Fingerprint]string, len(ordered))
	seenIDs := make(map[string]struct{}, len(ordered))
	kept = make([]Listing, 0, len(ordered))
	for _, l := range ordered {
		if _, dup := seenIDs[l.ID]; dup {
			dropped = append(dropped, l)
			continue
		}
		seenIDs[l.ID] = struct{}{}

		fp := NewFingerprint(l)
		owner, exists := claimed[fp]
		if exists && owner != l.Source {
			dropped = append(dropped, l)
			continue
		}
		if !exists {
			claimed[fp] = l.Source
		}
		kept = append(kept, l)
	}
	return kept, dropped
}
