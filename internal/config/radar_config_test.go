package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
user_agent: "test-agent"
page_dir: "data/pages"

output:
  listings_path: "data/listings.json"
  summary_path: "data/summary.json"
  csv_path: "data/listings.csv"

fetch:
  timeout_seconds: 30
  retry_count: 3
  requests_per_second: 0.5
  burst: 1

sources:
  izutaiyo:
    enabled: true
    priority: 1
    base_url: "https://www.izutaiyo.co.jp"
    min_sea_view: 2
  maple:
    enabled: true
    priority: 2
    base_url: "https://www.maple-h.co.jp"
    min_sea_view: 3
  aoba:
    enabled: false
    priority: 3
    base_url: "https://www.aoba-resort.com"
    min_sea_view: 3
    exclude_buckets: ["ao22205"]
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRadarConfig(t *testing.T) {
	cfg, err := LoadRadarConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.Equal(t, "data/listings.json", cfg.Output.ListingsPath)
	assert.Equal(t, 0.5, cfg.Fetch.RequestsPerSecond)

	sc, err := cfg.Source("izutaiyo")
	require.NoError(t, err)
	assert.Equal(t, 2, sc.MinSeaView)

	_, err = cfg.Source("nope")
	assert.Error(t, err)
}

func TestPriorityOrderSkipsDisabledSources(t *testing.T) {
	cfg, err := LoadRadarConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"izutaiyo", "maple"}, cfg.PriorityOrder())
}

func TestLoadRadarConfigRequiresEnabledSource(t *testing.T) {
	yaml := `
user_agent: "test-agent"
page_dir: "data/pages"
output:
  listings_path: "data/listings.json"
  summary_path: "data/summary.json"
fetch:
  timeout_seconds: 30
  retry_count: 3
  requests_per_second: 0.5
  burst: 1
sources:
  izutaiyo:
    enabled: false
    priority: 1
    base_url: "https://www.izutaiyo.co.jp"
    min_sea_view: 2
`
	_, err := LoadRadarConfig(writeConfigFile(t, yaml))
	assert.Error(t, err)
}

func TestLoadRadarConfigValidatesFields(t *testing.T) {
	// user_agent欠落
	yaml := `
page_dir: "data/pages"
output:
  listings_path: "data/listings.json"
  summary_path: "data/summary.json"
fetch:
  timeout_seconds: 30
  retry_count: 3
  requests_per_second: 0.5
  burst: 1
sources:
  izutaiyo:
    enabled: true
    priority: 1
    base_url: "https://www.izutaiyo.co.jp"
    min_sea_view: 2
`
	_, err := LoadRadarConfig(writeConfigFile(t, yaml))
	assert.Error(t, err)

	_, err = LoadRadarConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
