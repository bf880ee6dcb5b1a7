package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/config"
)

func newTestMaple(t *testing.T) *Maple {
	t.Helper()
	return NewMaple(config.SourceConfig{
		Enabled:    true,
		Priority:   2,
		BaseURL:    "https://www.maple-h.co.jp",
		MinSeaView: 3,
	}, testParser(), discardLogger())
}

func TestMapleIndexURLs(t *testing.T) {
	adapter := newTestMaple(t)

	urls := adapter.IndexURLs()
	assert.Len(t, urls, 6) // 戸建・土地 x 3ページ
	assert.Contains(t, urls, "https://www.maple-h.co.jp/estate_db/house/")
	assert.Contains(t, urls, "https://www.maple-h.co.jp/estate_db/house/page/2/")
	assert.Contains(t, urls, "https://www.maple-h.co.jp/estate_db/estate/page/3/")
}

func TestMapleDiscoverDetailURLs(t *testing.T) {
	adapter := newTestMaple(t)

	indexHTML := `
	<html><body>
	<article><a href="/estate_db/house/shirahama-123/">白浜の中古住宅</a></article>
	<article><a href="https://www.maple-h.co.jp/estate_db/estate/kisami-45/">吉佐美の売地</a></article>
	<a href="/estate_db/house/page/2/">次のページ</a>
	<a href="/estate_db/house/">一覧へ戻る</a>
	<a href="/category/news/">お知らせ</a>
	<a href="/estate_db/house/shirahama-123/#contact">お問い合わせ</a>
	</body></html>`

	candidates, err := adapter.DiscoverDetailURLs(indexHTML, "https://www.maple-h.co.jp/estate_db/house/")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "https://www.maple-h.co.jp/estate_db/house/shirahama-123/", candidates[0].URL)
	assert.Equal(t, "https://www.maple-h.co.jp/estate_db/estate/kisami-45/", candidates[1].URL)
}

func TestMapleNativeID(t *testing.T) {
	adapter := newTestMaple(t)

	id, err := adapter.NativeID("https://www.maple-h.co.jp/estate_db/house/shirahama-123/")
	require.NoError(t, err)
	assert.Equal(t, "shirahama-123", id)

	_, err = adapter.NativeID("https://www.maple-h.co.jp/")
	assert.Error(t, err)
}
