package infra_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/infra"
)

func TestTitleFallbackChain(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><head><title>下田市の物件 | 伊豆の不動産なら当社へ</title></head>
		<body><p>本文</p></body></html>`)
	require.NoError(t, err)

	// h1がないのでtitleタグへフォールバックし、サイト名の区切り以降は落とす
	title := doc.Title([]string{"h1", "title"})
	assert.Equal(t, "下田市の物件", title)
}

func TestTitlePrefersFirstMatchingSelector(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><head><title>サイト名</title></head>
		<body><h1>  南伊豆町の売地  </h1></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "南伊豆町の売地", doc.Title([]string{"h1", "title"}))
}

func TestTextExcludesFooterAndNav(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><body>
		<nav>伊東市 熱海市 エリアから探す</nav>
		<p>静岡県下田市の物件です。</p>
		<footer>本社：静岡県伊東市</footer>
		</body></html>`)
	require.NoError(t, err)

	text := doc.Text()
	assert.Contains(t, text, "下田市")
	assert.NotContains(t, text, "伊東市")
}

func TestLabeledCells(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><body><table>
		<tr><th>所在地</th><td>静岡県下田市吉佐美</td></tr>
		<tr><th>価格</th><td>3,500万円</td></tr>
		</table></body></html>`)
	require.NoError(t, err)

	cells := doc.LabeledCells([]string{"所在地", "住所"})
	assert.Contains(t, cells, "静岡県下田市吉佐美")
	assert.NotContains(t, cells, "3,500万円")
}

func TestLabeledCellsDefinitionList(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><body><dl>
		<dt>物件所在地</dt><dd>賀茂郡南伊豆町手石</dd>
		</dl></body></html>`)
	require.NoError(t, err)

	cells := doc.LabeledCells([]string{"所在地"})
	assert.Contains(t, cells, "賀茂郡南伊豆町手石")
}

func TestRowTexts(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><body><table>
		<tr><th>価格</th><td>3,500万円</td></tr>
		</table></body></html>`)
	require.NoError(t, err)

	rows := doc.RowTexts()
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0], "価格")
	assert.Contains(t, rows[0], "3,500万円")
}

func TestBestImagePrefersOgImage(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><head>
		<meta property="og:image" content="https://example.com/photos/main.jpg">
		</head><body>
		<img src="/img/other.jpg">
		</body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/photos/main.jpg", doc.BestImage("https://example.com/d.php?hpno=1"))
}

func TestBestImageSkipsLogoAndResolvesRelative(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`
		<html><body>
		<img src="/img/logo.png">
		<img src="/img/header_icon.jpg">
		<img src="photos/room1.jpg">
		</body></html>`)
	require.NoError(t, err)

	got := doc.BestImage("https://example.com/bukken/101.html")
	assert.Equal(t, "https://example.com/bukken/photos/room1.jpg", got)
}

func TestBestImageNotFound(t *testing.T) {
	doc, err := infra.NewHTMLDocument(`<html><body><p>写真はありません</p></body></html>`)
	require.NoError(t, err)

	assert.Equal(t, "", doc.BestImage("https://example.com/"))
}
