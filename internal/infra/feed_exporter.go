package infra

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nrad-K/izu-radar/internal/domain/model"
)

// FeedExporterは最終フィードと実行サマリーの書き出しを行います。
type FeedExporter interface {
	WriteFeed(doc model.FeedDocument) error
	WriteSummary(summary model.RunSummary) error
	WriteCSV(doc model.FeedDocument) error
}

type feedExporter struct {
	listingsPath string
	summaryPath  string
	csvPath      string
	csvHeaders   []string
}

func NewFeedExporter(listingsPath, summaryPath, csvPath string, csvHeaders []string) FeedExporter {
	return &feedExporter{
		listingsPath: listingsPath,
		summaryPath:  summaryPath,
		csvPath:      csvPath,
		csvHeaders:   csvHeaders,
	}
}

// WriteFeedは {generatedAt, listings} の1ドキュメントをJSONで書き出します。
func (e *feedExporter) WriteFeed(doc model.FeedDocument) error {
	return writeJSON(e.listingsPath, doc)
}

// WriteSummaryはソース別・却下理由別の集計を書き出します。
func (e *feedExporter) WriteSummary(summary model.RunSummary) error {
	return writeJSON(e.summaryPath, summary)
}

// WriteCSVはフィードのCSV版を書き出します。出力先が未設定なら何もしません。
func (e *feedExporter) WriteCSV(doc model.FeedDocument) error {
	if e.csvPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(e.csvPath), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	file, err := os.Create(e.csvPath)
	if err != nil {
		return fmt.Errorf("CSVファイルの作成に失敗しました: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(e.csvHeaders); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}

	for _, l := range doc.Listings {
		row := []string{
			l.ID,
			l.Source,
			l.SourceURL,
			l.Title,
			l.TitleEn,
			string(l.PropertyType),
			string(l.City),
			formatInt64Ptr(l.PriceJpy),
			formatFloatPtr(l.LandSqm),
			formatFloatPtr(l.BuildingSqm),
			formatIntPtr(l.YearBuilt),
			strconv.FormatFloat(l.Age, 'f', -1, 64),
			strconv.Itoa(l.SeaViewScore),
			formatBool(l.HasOnsen),
			l.ImageURL,
			l.FirstSeen.Format("2006-01-02"),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSONのシリアライズに失敗しました: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%s の書き込みに失敗しました: %w", path, err)
	}
	return nil
}

func formatInt64Ptr(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func formatIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(*p, 'f', 2, 64), "0"), ".")
}

func formatBool(b bool) string {
	if b {
		return "有"
	}
	return ""
}
