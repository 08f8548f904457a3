package analysisconfig

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/wonny/stocksignal/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

var validMarkets = map[string]bool{
	contracts.MarketKRX:    true,
	contracts.MarketNASDAQ: true,
	contracts.MarketNYSE:   true,
	contracts.MarketAMEX:   true,
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Stocks ===
	if len(cfg.Stocks.KR)+len(cfg.Stocks.US) == 0 {
		return ValidationError{"stocks", "at least one instrument is required"}
	}
	seen := make(map[string]bool)
	groups := []struct {
		key  string
		list []contracts.Instrument
	}{{"kr_stocks", cfg.Stocks.KR}, {"us_stocks", cfg.Stocks.US}}
	for _, g := range groups {
		for i, inst := range g.list {
			field := fmt.Sprintf("%s[%d]", g.key, i)
			if inst.Code == "" {
				return ValidationError{field + ".code", "required"}
			}
			if seen[inst.Code] {
				return ValidationError{field + ".code", "duplicate code " + inst.Code}
			}
			seen[inst.Code] = true
			if !validMarkets[inst.Market] {
				return ValidationError{field + ".market", "unknown market " + inst.Market}
			}
		}
	}
	if cfg.Stocks.DataConfig.Days <= 0 {
		return ValidationError{"data_config.days", "must be > 0"}
	}
	if cfg.Stocks.DataConfig.HistoryLimit <= 0 {
		return ValidationError{"data_config.history_limit", "must be > 0"}
	}

	// === Evaluators ===
	enabled := make(map[string]bool)
	for i, name := range cfg.Evaluators.Enabled {
		if name == "" {
			return ValidationError{fmt.Sprintf("enabled_evaluators[%d]", i), "must not be empty"}
		}
		if enabled[name] {
			return ValidationError{"enabled_evaluators", "duplicate evaluator " + name}
		}
		enabled[name] = true
	}
	for name, params := range cfg.Evaluators.Params {
		if w, ok := params["weight"]; ok && w < 0 {
			return ValidationError{name + ".weight", "must be >= 0"}
		}
	}

	// === Report ===
	switch cfg.Report.Format {
	case "markdown", "html", "both":
	default:
		return ValidationError{"report.format", "must be markdown, html or both"}
	}
	if cfg.Report.OutputDir == "" {
		return ValidationError{"report.output_dir", "required"}
	}
	for group, schedule := range map[string]string{"kr": cfg.Report.Schedule.KR, "us": cfg.Report.Schedule.US} {
		if schedule == "" {
			continue
		}
		if _, err := scheduleParser.Parse(schedule); err != nil {
			return ValidationError{"report.schedule." + group, err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.Evaluators.Enabled) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_EVALUATORS",
			Message: "활성 평가기 없음: 모든 종목이 중립 점수(2.0)로 집계됨",
		})
	}

	// 가중치 합 ≠ 평가기 수 이면 종합 점수가 가중평균이 아님
	sum := 0.0
	for _, name := range cfg.Evaluators.Enabled {
		w, ok := cfg.Evaluators.Params[name]["weight"]
		if !ok {
			w = 1.0
		}
		sum += w
	}
	if len(cfg.Evaluators.Enabled) > 0 && sum != float64(len(cfg.Evaluators.Enabled)) {
		warnings = append(warnings, Warning{
			Code:    "WEIGHT_NOT_NORMALIZED",
			Message: fmt.Sprintf("가중치 합 %.2f ≠ 평가기 수 %d: 종합 점수는 평가기 수로 나눔", sum, len(cfg.Evaluators.Enabled)),
		})
	}

	if cfg.Report.UseLLM && cfg.Report.LLMModel == "" {
		warnings = append(warnings, Warning{
			Code:    "LLM_MODEL_MISSING",
			Message: "use_llm=true 이지만 llm_model 미지정: 규칙 기반 코멘트 사용",
		})
	}

	if cfg.Stocks.DataConfig.Days < 80 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_COLLECTION_WINDOW",
			Message: "수집 기간 < 80일: 일목 선행스팬B(52봉) 계산 불가 가능성",
		})
	}

	return warnings
}
