package analysisconfig

import (
	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/evaluator"
)

// File names inside CONFIG_DIR
const (
	StocksFile     = "stocks.yml"
	EvaluatorsFile = "evaluators.yml"
	ReportFile     = "report.yml"
)

// Config is the full analysis configuration
// ⭐ SSOT: 분석 설정 (종목/평가기/리포트)
type Config struct {
	Stocks     Stocks     `json:"stocks"`
	Evaluators Evaluators `json:"evaluators"`
	Report     Report     `json:"report"`
}

// Stocks is stocks.yml
type Stocks struct {
	KR         []contracts.Instrument `yaml:"kr_stocks" json:"kr_stocks"`
	US         []contracts.Instrument `yaml:"us_stocks" json:"us_stocks"`
	DataConfig DataConfig             `yaml:"data_config" json:"data_config"`
}

// DataConfig controls collection and query windows
type DataConfig struct {
	Days         int `yaml:"days" json:"days"`                   // 수집 기간 (calendar days)
	HistoryLimit int `yaml:"history_limit" json:"history_limit"` // 평가에 사용할 최대 봉 수
}

// Instruments returns the list configured for a market group (kr, us)
func (s Stocks) Instruments(group string) []contracts.Instrument {
	switch group {
	case contracts.GroupKR:
		return s.KR
	case contracts.GroupUS:
		return s.US
	default:
		return nil
	}
}

// Lookup finds an instrument by code across groups
func (s Stocks) Lookup(code string) (contracts.Instrument, bool) {
	for _, list := range [][]contracts.Instrument{s.KR, s.US} {
		for _, inst := range list {
			if inst.Code == code {
				return inst, true
			}
		}
	}
	return contracts.Instrument{}, false
}

// Evaluators is evaluators.yml. Every key other than enabled_evaluators is
// a parameter map for the evaluator of that name.
type Evaluators struct {
	Enabled []string                    `yaml:"enabled_evaluators" json:"enabled_evaluators"`
	Params  map[string]evaluator.Params `yaml:",inline" json:"params"`
}

// Report is report.yml
type Report struct {
	Format    string   `yaml:"format" json:"format"` // markdown | html | both
	OutputDir string   `yaml:"output_dir" json:"output_dir"`
	UseLLM    bool     `yaml:"use_llm" json:"use_llm"`
	LLMModel  string   `yaml:"llm_model" json:"llm_model"`
	Schedule  Schedule `yaml:"schedule" json:"schedule"`
}

// Schedule holds one cron expression (with seconds) per market group
type Schedule struct {
	KR string `yaml:"kr" json:"kr"`
	US string `yaml:"us" json:"us"`
}

// Formats expands Report.Format into reporter names
func (r Report) Formats() []string {
	if r.Format == "both" {
		return []string{"markdown", "html"}
	}
	return []string{r.Format}
}

// For returns the schedule for a market group
func (s Schedule) For(group string) string {
	if group == contracts.GroupUS {
		return s.US
	}
	return s.KR
}

// Defaults returns the configuration used when optional files are absent
func Defaults() *Config {
	return &Config{
		Stocks: Stocks{
			DataConfig: DataConfig{Days: 120, HistoryLimit: 60},
		},
		Evaluators: Evaluators{
			Enabled: []string{evaluator.BandName, evaluator.CloudName},
			Params: map[string]evaluator.Params{
				evaluator.BandName:  {"period": 20, "std_multiplier": 2.0, "weight": 1.0},
				evaluator.CloudName: {"conversion_period": 9, "base_period": 26, "span_b_period": 52, "weight": 1.0},
			},
		},
		Report: Report{
			Format:    "markdown",
			OutputDir: "reports",
			LLMModel:  "claude-sonnet-4-5",
			Schedule: Schedule{
				KR: "0 0 16 * * 1-5", // 장 마감 후
				US: "0 30 7 * * 2-6",
			},
		},
	}
}
