package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/domain/model"
)

func TestIzuTaiyoIndexURLsCoverCitiesAndKinds(t *testing.T) {
	adapter := newTestIzuTaiyo(t, 2)

	urls := adapter.IndexURLs()
	assert.Len(t, urls, 8) // 4自治体 x 戸建・土地
	assert.Contains(t, urls, "https://www.izutaiyo.co.jp/tokusen.php?hpcity[]=22219&hpkind=1")
	assert.Contains(t, urls, "https://www.izutaiyo.co.jp/tokusen.php?hpcity[]=22304&hpkind=2")
}

func TestIzuTaiyoDiscoverDetailURLs(t *testing.T) {
	adapter := newTestIzuTaiyo(t, 2)

	indexHTML := `
	<html><body>
	<div onclick="location.href='d.php?hpno=392'">物件A</div>
	<div onclick="location.href='d.php?hpbunno=SMB392H'">物件B</div>
	<div onclick="location.href='d.php?hpno=392'">物件A(再掲)</div>
	<a href="d.php?hpno=771">物件C</a>
	<a href="tokusen.php?hpcity[]=22219">検索に戻る</a>
	</body></html>`

	candidates, err := adapter.DiscoverDetailURLs(indexHTML, "https://www.izutaiyo.co.jp/tokusen.php?hpcity[]=22219&hpkind=1")
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.URL)
		assert.Equal(t, model.Shimoda, c.HintedCity)
	}
	assert.Contains(t, urls, "https://www.izutaiyo.co.jp/d.php?hpno=392")
	assert.Contains(t, urls, "https://www.izutaiyo.co.jp/d.php?hpbunno=SMB392H")
	assert.Contains(t, urls, "https://www.izutaiyo.co.jp/d.php?hpno=771")
}

func TestIzuTaiyoNativeID(t *testing.T) {
	adapter := newTestIzuTaiyo(t, 2)

	id, err := adapter.NativeID("https://www.izutaiyo.co.jp/d.php?hpno=SMB392H")
	require.NoError(t, err)
	assert.Equal(t, "SMB392H", id)

	id, err = adapter.NativeID("https://www.izutaiyo.co.jp/d.php?hpbunno=B1024T")
	require.NoError(t, err)
	assert.Equal(t, "B1024T", id)

	_, err = adapter.NativeID("https://www.izutaiyo.co.jp/tokusen.php?hpcity[]=22219")
	assert.Error(t, err)
}
