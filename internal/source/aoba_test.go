package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/domain/model"
)

func newTestAoba(t *testing.T) *Aoba {
	t.Helper()
	return NewAoba(config.SourceConfig{
		Enabled:        true,
		Priority:       3,
		BaseURL:        "https://www.aoba-resort.com",
		MinSeaView:     3,
		ExcludeBuckets: []string{"ao22205", "ao22208", "ao22222"},
	}, testParser(), discardLogger())
}

func TestAobaDiscoverDetailURLs(t *testing.T) {
	adapter := newTestAoba(t)

	indexHTML := `
	<html><body>
	<a href="ao22219room101.html">下田の物件</a>
	<a href="/house/ao22301room8.html">河津の物件</a>
	<a href="ao22205room3.html">伊東の物件</a>
	<a href="index.html">トップへ</a>
	<a href="ao22219room101.html">下田の物件(再掲)</a>
	</body></html>`

	candidates, err := adapter.DiscoverDetailURLs(indexHTML, "https://www.aoba-resort.com/house/")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "https://www.aoba-resort.com/house/ao22219room101.html", candidates[0].URL)
	assert.Equal(t, model.Shimoda, candidates[0].HintedCity)
	assert.Equal(t, "https://www.aoba-resort.com/house/ao22301room8.html", candidates[1].URL)
	assert.Equal(t, model.Kawazu, candidates[1].HintedCity)
}

func TestAobaNativeID(t *testing.T) {
	adapter := newTestAoba(t)

	id, err := adapter.NativeID("https://www.aoba-resort.com/house/ao22219room101.html")
	require.NoError(t, err)
	assert.Equal(t, "ao22219room101", id)
}

func TestAobaParseDetailFillsHintFromURL(t *testing.T) {
	adapter := newTestAoba(t)

	html := `
	<html><body>
	<h2>海一望の中古戸建</h2>
	<table><tr><th>価格</th><td>2,480万円</td></tr></table>
	<p>相模湾を望む高台の物件です。</p>
	</body></html>`

	result, err := adapter.ParseDetail(html, PageContext{
		URL: "https://www.aoba-resort.com/house/ao22304room12.html",
	})
	require.NoError(t, err)
	require.True(t, result.Accepted())
	assert.Equal(t, model.MinamiIzu, result.Listing.City)
	assert.Equal(t, 4, result.Listing.SeaViewScore)
}
