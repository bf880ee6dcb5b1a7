package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrad-K/izu-radar/internal/config"
	"github.com/nrad-K/izu-radar/internal/constants"
	"github.com/nrad-K/izu-radar/internal/domain/model"
	"github.com/nrad-K/izu-radar/internal/infra"
	"github.com/nrad-K/izu-radar/internal/logger"
	"github.com/nrad-K/izu-radar/internal/source"
)

// stubJobRepoはRedisの代わりに使うインメモリのジョブリポジトリです。
// 実行ユースケースはワーカーから並行に触るため、ロックで保護します。
type stubJobRepo struct {
	mu   sync.Mutex
	jobs map[string]model.CrawlJob
}

func newStubJobRepo() *stubJobRepo {
	return &stubJobRepo{jobs: make(map[string]model.CrawlJob)}
}

func (r *stubJobRepo) key(job model.CrawlJob) string {
	return string(job.Status) + ":" + job.URL.String()
}

func (r *stubJobRepo) Save(_ context.Context, job model.CrawlJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[r.key(job)] = job
	return nil
}

func (r *stubJobRepo) Delete(_ context.Context, job model.CrawlJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, r.key(job))
	return nil
}

func (r *stubJobRepo) FindListByStatus(_ context.Context, _ int, status model.CrawlJobStatus) ([]model.CrawlJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []model.CrawlJob
	for _, job := range r.jobs {
		if job.Status == status {
			found = append(found, job)
		}
	}
	return found, nil
}

func testLogger() logger.AppLogger {
	return logger.NewAppLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const izuDetailHTML = `
<html><body>
<h1>下田市の家情報</h1>
<table>
<tr><th>価格</th><td>3,500万円</td></tr>
<tr><th>所在地</th><td>静岡県下田市</td></tr>
<tr><th>土地面積</th><td>200.5㎡</td></tr>
</table>
<p>築15年。海まで徒歩5分の立地です。</p>
</body></html>`

const mapleDetailHTML = `
<html><body>
<h1 class="entry-title">下田市の中古戸建</h1>
<table>
<tr><th>価格</th><td>3,500万円</td></tr>
<tr><th>所在地</th><td>静岡県下田市</td></tr>
</table>
<p>海まで徒歩8分です。</p>
</body></html>`

type generateFixture struct {
	cfg   config.RadarConfig
	repo  *stubJobRepo
	store *infra.PageStore
}

func newGenerateFixture(t *testing.T) *generateFixture {
	t.Helper()
	tmp := t.TempDir()

	cfg := config.RadarConfig{
		UserAgent: "test-agent",
		PageDir:   filepath.Join(tmp, "pages"),
		Output: config.OutputConfig{
			ListingsPath: filepath.Join(tmp, "listings.json"),
			SummaryPath:  filepath.Join(tmp, "summary.json"),
			CSVPath:      filepath.Join(tmp, "listings.csv"),
		},
		Sources: map[string]config.SourceConfig{
			"izutaiyo": {Enabled: true, Priority: 1, BaseURL: "https://www.izutaiyo.co.jp", MinSeaView: 2},
			"maple":    {Enabled: true, Priority: 2, BaseURL: "https://www.maple-h.co.jp", MinSeaView: 0},
		},
	}

	return &generateFixture{
		cfg:   cfg,
		repo:  newStubJobRepo(),
		store: infra.NewPageStore(cfg.PageDir),
	}
}

func (f *generateFixture) addSuccessJob(t *testing.T, sourceName, pageURL, html string) {
	t.Helper()
	rel, err := f.store.SavePage(sourceName, pageURL, html)
	require.NoError(t, err)

	parsed, err := url.Parse(pageURL)
	require.NoError(t, err)

	job := model.CrawlJob{
		ID:        uuid.New(),
		Source:    sourceName,
		URL:       *parsed,
		Status:    model.CrawlJobStatusSuccess,
		StorePath: rel,
	}
	require.NoError(t, f.repo.Save(context.Background(), job))
}

func (f *generateFixture) usecase(t *testing.T, now time.Time) GenerateUseCase {
	t.Helper()
	parser := infra.NewListingParser(constants.GetExtractPatterns(), constants.GetExtractLexicon())
	adapters, err := source.BuildAll(f.cfg, parser, testLogger())
	require.NoError(t, err)

	return NewGenerateListingFeedUseCase(GenerateArgs{
		Cfg:      f.cfg,
		Adapters: adapters,
		Store:    f.store,
		Repo:     f.repo,
		History:  infra.NewListingHistoryClient(),
		Exporter: infra.NewFeedExporter(f.cfg.Output.ListingsPath, f.cfg.Output.SummaryPath, f.cfg.Output.CSVPath, constants.GetFeedCSVHeaders()),
		Logger:   testLogger(),
		Now:      func() time.Time { return now },
	})
}

func readFeed(t *testing.T, path string) model.FeedDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc model.FeedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func readSummary(t *testing.T, path string) model.RunSummary {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var summary model.RunSummary
	require.NoError(t, json.Unmarshal(data, &summary))
	return summary
}

func TestGenerateListingFeedDeduplicatesAcrossSources(t *testing.T) {
	f := newGenerateFixture(t)
	f.addSuccessJob(t, "izutaiyo", "https://www.izutaiyo.co.jp/d.php?hpno=SMB392H", izuDetailHTML)
	f.addSuccessJob(t, "maple", "https://www.maple-h.co.jp/estate_db/house/shimoda-house/", mapleDetailHTML)

	runAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.usecase(t, runAt).Run(context.Background()))

	feed := readFeed(t, f.cfg.Output.ListingsPath)
	require.Len(t, feed.Listings, 1)
	assert.Equal(t, "izutaiyo-SMB392H", feed.Listings[0].ID)
	assert.True(t, feed.Listings[0].FirstSeen.Equal(runAt))

	summary := readSummary(t, f.cfg.Output.SummaryPath)
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, 1, summary.Rejections[model.RejectDuplicate])
	assert.Equal(t, 1, summary.BySource["Izu Taiyo"])

	// CSVも出力される
	_, err := os.Stat(f.cfg.Output.CSVPath)
	assert.NoError(t, err)
}

func TestGenerateListingFeedKeepsOneListingPerID(t *testing.T) {
	f := newGenerateFixture(t)
	// 同じ詳細ページが末尾スラッシュの有無で別ジョブになったケース。
	// 物件番号が同じなのでIDも同じになり、フィードには1件だけ残る。
	f.addSuccessJob(t, "maple", "https://www.maple-h.co.jp/estate_db/house/shimoda-house/", mapleDetailHTML)
	f.addSuccessJob(t, "maple", "https://www.maple-h.co.jp/estate_db/house/shimoda-house", mapleDetailHTML)

	runAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.usecase(t, runAt).Run(context.Background()))

	feed := readFeed(t, f.cfg.Output.ListingsPath)
	require.Len(t, feed.Listings, 1)
	assert.Equal(t, "maple-shimoda-house", feed.Listings[0].ID)

	summary := readSummary(t, f.cfg.Output.SummaryPath)
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Rejections[model.RejectDuplicate])
}

func TestGenerateListingFeedRetainsFirstSeenAcrossRuns(t *testing.T) {
	f := newGenerateFixture(t)
	f.addSuccessJob(t, "izutaiyo", "https://www.izutaiyo.co.jp/d.php?hpno=SMB392H", izuDetailHTML)

	firstRun := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.usecase(t, firstRun).Run(context.Background()))

	secondRun := firstRun.Add(72 * time.Hour)
	require.NoError(t, f.usecase(t, secondRun).Run(context.Background()))

	feed := readFeed(t, f.cfg.Output.ListingsPath)
	require.Len(t, feed.Listings, 1)
	assert.True(t, feed.GeneratedAt.Equal(secondRun))
	assert.True(t, feed.Listings[0].FirstSeen.Equal(firstRun), "初出日時は再実行でも維持される")
}

func TestGenerateListingFeedCountsRejections(t *testing.T) {
	f := newGenerateFixture(t)
	soldHTML := `
	<html><body>
	<h1>【成約御礼】下田市の家情報</h1>
	<table><tr><th>価格</th><td>3,500万円</td></tr></table>
	</body></html>`
	f.addSuccessJob(t, "izutaiyo", "https://www.izutaiyo.co.jp/d.php?hpno=SOLD1H", soldHTML)
	f.addSuccessJob(t, "izutaiyo", "https://www.izutaiyo.co.jp/d.php?hpno=SMB392H", izuDetailHTML)

	runAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.usecase(t, runAt).Run(context.Background()))

	summary := readSummary(t, f.cfg.Output.SummaryPath)
	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Saved)
	assert.Equal(t, 1, summary.Rejections[model.RejectSold])
}

func TestGenerateListingFeedFailsWithoutJobs(t *testing.T) {
	f := newGenerateFixture(t)
	err := f.usecase(t, time.Now()).Run(context.Background())
	assert.Error(t, err)
}
