package evaluator

import (
	"fmt"
	"math"

	"github.com/wonny/stocksignal/internal/contracts"
)

// NeutralScore is returned when a series is too short to evaluate
const NeutralScore = 2.0

// DetailInsufficient is the diagnostic key set on a neutral fallback
const DetailInsufficient = "insufficient_history"

// Evaluator scores a newest-first price series
// ⭐ SSOT: 평가기 공통 인터페이스
//
// Implementations are pure: they hold configuration only.
type Evaluator interface {
	Name() string
	Evaluate(series contracts.PriceSeries) contracts.Verdict
	Details(series contracts.PriceSeries) map[string]interface{}
	Weight() float64
}

// IsInsufficient reports whether details describe a neutral fallback
func IsInsufficient(details map[string]interface{}) bool {
	v, ok := details[DetailInsufficient].(bool)
	return ok && v
}

func insufficientDetails(required, available int) map[string]interface{} {
	return map[string]interface{}{
		DetailInsufficient: true,
		"required":         required,
		"available":        available,
		"score":            NeutralScore,
	}
}

func neutralVerdict() contracts.Verdict {
	return contracts.Verdict{
		Score:   NeutralScore,
		Signal:  contracts.SignalBuy,
		Comment: "데이터 부족",
	}
}

// Params is a per-evaluator parameter map from evaluators.yml
type Params map[string]float64

// Int returns a positive integer parameter or def when absent
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if v <= 0 || v != math.Trunc(v) {
		return 0, fmt.Errorf("%s must be a positive integer, got %v", key, v)
	}
	return int(v), nil
}

// Float returns a positive parameter or def when absent
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be positive, got %v", key, v)
	}
	return v, nil
}

// weight reads the shared "weight" parameter, default 1.0. Zero is allowed
// and mutes the evaluator in the overall score.
func (p Params) weight() (float64, error) {
	v, ok := p["weight"]
	if !ok {
		return 1.0, nil
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("weight must be >= 0, got %v", v)
	}
	return v, nil
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
