package analysisconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/evaluator"
)

const stocksYAML = `
kr_stocks:
  - code: "005930"
    name: 삼성전자
    market: KRX
  - code: "042660"
    name: 한화오션
us_stocks:
  - code: AAPL
    name: Apple
    market: NASDAQ
  - code: KO
    name: Coca-Cola
    market: NYSE
data_config:
  days: 120
  history_limit: 60
`

const evaluatorsYAML = `
enabled_evaluators:
  - bollinger
  - ichimoku
bollinger:
  period: 20
  std_multiplier: 2.0
  weight: 1.5
ichimoku:
  conversion_period: 9
  base_period: 26
  span_b_period: 52
  weight: 1.0
`

const reportYAML = `
format: html
output_dir: out
use_llm: false
llm_model: claude-sonnet-4-5
schedule:
  kr: "0 0 16 * * 1-5"
  us: "@daily"
`

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeDir(t, map[string]string{
		StocksFile:     stocksYAML,
		EvaluatorsFile: evaluatorsYAML,
		ReportFile:     reportYAML,
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, cfg.Stocks.KR, 2)
	assert.Equal(t, "삼성전자", cfg.Stocks.KR[0].Name)
	assert.Equal(t, contracts.MarketKRX, cfg.Stocks.KR[1].Market, "market defaults to KRX")
	assert.Equal(t, contracts.MarketNYSE, cfg.Stocks.US[1].Market)
	assert.Equal(t, 120, cfg.Stocks.DataConfig.Days)

	assert.Equal(t, []string{"bollinger", "ichimoku"}, cfg.Evaluators.Enabled)
	assert.Equal(t, 1.5, cfg.Evaluators.Params["bollinger"]["weight"])
	assert.Equal(t, 52.0, cfg.Evaluators.Params["ichimoku"]["span_b_period"])

	assert.Equal(t, "html", cfg.Report.Format)
	assert.Equal(t, "out", cfg.Report.OutputDir)
	assert.Equal(t, "@daily", cfg.Report.Schedule.For(contracts.GroupUS))

	inst, ok := cfg.Stocks.Lookup("AAPL")
	require.True(t, ok)
	assert.Equal(t, "Apple", inst.Name)
}

func TestLoadDefaults(t *testing.T) {
	dir := writeDir(t, map[string]string{StocksFile: stocksYAML})

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{evaluator.BandName, evaluator.CloudName}, cfg.Evaluators.Enabled)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Equal(t, []string{"markdown"}, cfg.Report.Formats())
}

func TestLoadMissingStocks(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadEmptyStocks(t *testing.T) {
	dir := writeDir(t, map[string]string{StocksFile: "data_config:\n  days: 60\n"})
	_, err := Load(dir)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "stocks", ve.Field)
}

func TestLoadUnknownField(t *testing.T) {
	dir := writeDir(t, map[string]string{StocksFile: stocksYAML + "\nunknown_key: 1\n"})
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"duplicate code", func(c *Config) { c.Stocks.US = append(c.Stocks.US, c.Stocks.KR[0]) }, "us_stocks[2].code"},
		{"unknown market", func(c *Config) { c.Stocks.US[0].Market = "LSE" }, "us_stocks[0].market"},
		{"zero days", func(c *Config) { c.Stocks.DataConfig.Days = 0 }, "data_config.days"},
		{"duplicate evaluator", func(c *Config) { c.Evaluators.Enabled = []string{"bollinger", "bollinger"} }, "enabled_evaluators"},
		{"negative weight", func(c *Config) { c.Evaluators.Params["ichimoku"]["weight"] = -1 }, "ichimoku.weight"},
		{"bad format", func(c *Config) { c.Report.Format = "pdf" }, "report.format"},
		{"bad schedule", func(c *Config) { c.Report.Schedule.KR = "every day" }, "report.schedule.kr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(stocksYAML), []byte(evaluatorsYAML), []byte(reportYAML))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestWarn(t *testing.T) {
	cfg, err := Parse([]byte(stocksYAML), []byte(evaluatorsYAML), nil)
	require.NoError(t, err)

	codes := map[string]bool{}
	for _, w := range Warn(cfg) {
		codes[w.Code] = true
	}
	assert.True(t, codes["WEIGHT_NOT_NORMALIZED"], "1.5 + 1.0 != 2 evaluators")
	assert.False(t, codes["NO_EVALUATORS"])
}

func TestHash(t *testing.T) {
	a, err := Parse([]byte(stocksYAML), []byte(evaluatorsYAML), []byte(reportYAML))
	require.NoError(t, err)
	b, err := Parse([]byte(stocksYAML), []byte(evaluatorsYAML), []byte(reportYAML))
	require.NoError(t, err)

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	b.Evaluators.Params["bollinger"]["period"] = 21
	hc, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}
