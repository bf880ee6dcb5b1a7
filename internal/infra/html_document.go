package infra

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spaceRunPattern = regexp.MustCompile(`\s+`)

// HTMLDocumentは、物件ページの解析で繰り返し使うgoquery操作をまとめたものです。
// フッターとナビゲーションは所在地の誤検出源になるため、生成時に除去します。
type HTMLDocument struct {
	doc *goquery.Document
}

func NewHTMLDocument(html string) (*HTMLDocument, error) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("HTMLのパースに失敗しました: %w", err)
	}
	document.Find("footer, nav, .footer, .navigation").Remove()
	return &HTMLDocument{doc: document}, nil
}

// Titleはセレクターのフォールバック連鎖でタイトルを取得します。
// サイト名の区切り（| や –）以降は落とします。見つからなければ空文字列です。
func (h *HTMLDocument) Title(selectors []string) string {
	for _, sel := range selectors {
		s := h.doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		title := CleanText(s.Text())
		for _, sep := range []string{"|", "–"} {
			if i := strings.Index(title, sep); i >= 0 {
				title = strings.TrimSpace(title[:i])
			}
		}
		if title != "" {
			return title
		}
	}
	return ""
}

// Textはページ全体のテキストを空白正規化して返します。
func (h *HTMLDocument) Text() string {
	return CleanText(h.doc.Text())
}

// ExtractTextはセレクターに一致する要素のテキストを列挙します。
func (h *HTMLDocument) ExtractText(selector string) []string {
	var texts []string
	h.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, CleanText(s.Text()))
	})
	return texts
}

// ExtractAttributeはセレクターに一致する要素の属性値を列挙します。
func (h *HTMLDocument) ExtractAttribute(selector, attr string) []string {
	var attrs []string
	h.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if value, exists := s.Attr(attr); exists {
			attrs = append(attrs, value)
		}
	})
	return attrs
}

// LabeledCellsは、所在地テーブルのようにラベルと値が隣接するマークアップから
// 値の候補を集めます。ラベルを含むセル自身、次の兄弟要素、親のtr行の順に候補とし、
// 照合は空白を除去してから行います。
func (h *HTMLDocument) LabeledCells(labels []string) []string {
	var candidates []string
	compactLabels := make([]string, len(labels))
	for i, l := range labels {
		compactLabels[i] = spaceRunPattern.ReplaceAllString(l, "")
	}

	h.doc.Find("th, td, dt, dd, div, span").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		compact := spaceRunPattern.ReplaceAllString(text, "")
		for _, label := range compactLabels {
			if !strings.Contains(compact, label) {
				continue
			}
			candidates = append(candidates, CleanText(text))
			if sib := s.Next(); sib.Length() > 0 {
				candidates = append(candidates, CleanText(sib.Text()))
			}
			if row := s.Closest("tr"); row.Length() > 0 {
				candidates = append(candidates, CleanText(row.Text()))
			}
			break
		}
	})
	return candidates
}

// RowTextsは全テーブル行のテキストを返します。価格行の探索に使います。
func (h *HTMLDocument) RowTexts() []string {
	var rows []string
	h.doc.Find("tr").Each(func(_ int, s *goquery.Selection) {
		rows = append(rows, CleanText(s.Text()))
	})
	return rows
}

// Headingsはh1とh2のテキストを順に返します。所在地のフォールバック探索用です。
func (h *HTMLDocument) Headings() []string {
	var heads []string
	h.doc.Find("h1, h2").Each(func(_ int, s *goquery.Selection) {
		heads = append(heads, CleanText(s.Text()))
	})
	return heads
}

// BestImageは物件写真のURLを探します。優先順は
// og:imageメタタグ -> 既知の画像コンテナ -> ロゴ等を除いた最初の写真拡張子のimgです。
func (h *HTMLDocument) BestImage(pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	if og, ok := h.doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
		return resolveImageURL(base, og)
	}

	containers := []string{"#main_img", ".main_img", ".wp-post-image", ".item_img img", ".swiper-slide img"}
	for _, sel := range containers {
		if src, ok := h.doc.Find(sel).First().Attr("src"); ok && src != "" {
			return resolveImageURL(base, src)
		}
	}

	var found string
	h.doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return true
		}
		lower := strings.ToLower(src)
		if strings.Contains(lower, "logo") || strings.Contains(lower, "icon") || strings.Contains(lower, "map") {
			return true
		}
		if strings.Contains(lower, ".jpg") || strings.Contains(lower, ".jpeg") || strings.Contains(lower, ".png") {
			found = resolveImageURL(base, src)
			return false
		}
		return true
	})
	return found
}

func resolveImageURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if parsed.IsAbs() || base == nil {
		return parsed.String()
	}
	return base.ResolveReference(parsed).String()
}

// CleanTextは連続する空白を1つに潰し、前後の空白を除去します。
func CleanText(s string) string {
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(s, " "))
}
