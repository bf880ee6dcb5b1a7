package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// FetchConfigはHTTP取得まわりの設定です。リトライとレート制限は全ソースで共通の
// 取得クライアントが担い、ソースごとの礼儀設定はRequestsPerSecondで調整します。
type FetchConfig struct {
	TimeoutSeconds    int     `yaml:"timeout_seconds" validate:"min=1,max=300"`
	RetryCount        int     `yaml:"retry_count" validate:"min=1,max=10"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0,max=10"`
	Burst             int     `yaml:"burst" validate:"min=1,max=10"`
}

// OutputConfigは生成物の出力先です。
type OutputConfig struct {
	ListingsPath string `yaml:"listings_path" validate:"required,min=1"`
	SummaryPath  string `yaml:"summary_path" validate:"required,min=1"`
	CSVPath      string `yaml:"csv_path"` // 空なら出力しない
}

// SourceConfigはブローカーサイト1つ分の収集ポリシーです。
// MinSeaViewは掲載に必要な海眺望スコアの下限で、サイトごとに設定します
// （検索段階で海近物件に絞れるサイトは低く、絞れないサイトは高く）。
type SourceConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Priority       int      `yaml:"priority" validate:"min=1,max=100"`
	BaseURL        string   `yaml:"base_url" validate:"required,url"`
	MinSeaView     int      `yaml:"min_sea_view" validate:"min=0,max=5"`
	ExcludeBuckets []string `yaml:"exclude_buckets"` // 自治体境界と一致しないサイト側の地域グループ
}

// RadarConfigはアプリケーション全体の設定をまとめる構造体です。
type RadarConfig struct {
	UserAgent string                  `yaml:"user_agent" validate:"required,min=1"`
	PageDir   string                  `yaml:"page_dir" validate:"required,min=1"`
	Output    OutputConfig            `yaml:"output" validate:"required"`
	Fetch     FetchConfig             `yaml:"fetch" validate:"required"`
	Sources   map[string]SourceConfig `yaml:"sources" validate:"required,dive"`
}

// バリデーターのインスタンス
var validate = validator.New()

// YAMLファイルからRadarConfigを読み込む
func LoadRadarConfig(path string) (RadarConfig, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return RadarConfig{}, fmt.Errorf("設定ファイルを読み込めませんでした: %w", err)
	}

	var cfg RadarConfig
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return RadarConfig{}, fmt.Errorf("YAMLの解析に失敗しました: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return RadarConfig{}, fmt.Errorf("設定のバリデーションに失敗しました: %w", err)
	}

	// カスタムバリデーション
	enabled := 0
	for _, sc := range cfg.Sources {
		if sc.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return RadarConfig{}, fmt.Errorf("有効なソースが1つもありません")
	}

	return cfg, nil
}

// Source は名前からソース設定を引きます。
func (c RadarConfig) Source(name string) (SourceConfig, error) {
	sc, ok := c.Sources[name]
	if !ok {
		return SourceConfig{}, fmt.Errorf("ソース %s の設定がありません", name)
	}
	return sc, nil
}

// PriorityOrderは有効なソース名を優先度順（数値が小さいほど優先）で返します。
// 同値の場合は名前順で決定的にします。
func (c RadarConfig) PriorityOrder() []string {
	names := make([]string, 0, len(c.Sources))
	for name, sc := range c.Sources {
		if sc.Enabled {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		pi := c.Sources[names[i]].Priority
		pj := c.Sources[names[j]].Priority
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}
