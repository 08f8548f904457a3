package contracts

import "time"

// Signal is the discrete outcome of one evaluator
type Signal int

const (
	SignalStrongSell Signal = 1
	SignalSell       Signal = 2
	SignalBuy        Signal = 3
	SignalStrongBuy  Signal = 4
)

// Marker returns the report marker for a signal
func (s Signal) Marker() string {
	switch s {
	case SignalStrongBuy:
		return "🟢"
	case SignalBuy:
		return "🟡"
	case SignalSell:
		return "🟠"
	default:
		return "🔴"
	}
}

func (s Signal) String() string {
	switch s {
	case SignalStrongBuy:
		return "strong_buy"
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "strong_sell"
	}
}

// SignalForScore maps a score in [1,4] to its signal (rounded)
func SignalForScore(score float64) Signal {
	switch {
	case score >= 3.5:
		return SignalStrongBuy
	case score >= 2.5:
		return SignalBuy
	case score >= 1.5:
		return SignalSell
	default:
		return SignalStrongSell
	}
}

// Verdict is what an evaluator concludes about a series
type Verdict struct {
	Score   float64 `json:"score"`
	Signal  Signal  `json:"signal"`
	Comment string  `json:"comment"`
}

// EvaluationRecord is a persisted evaluator outcome, unique per (code, date, evaluator)
type EvaluationRecord struct {
	Code      string                 `json:"code"`
	Date      time.Time              `json:"date"`
	Evaluator string                 `json:"evaluator"`
	Score     float64                `json:"score"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at,omitempty"`
}

// EvaluatorResult is one evaluator's contribution to an AggregateResult
type EvaluatorResult struct {
	Name    string                 `json:"name"`
	Verdict Verdict                `json:"verdict"`
	Weight  float64                `json:"weight"`
	Details map[string]interface{} `json:"details"`

	// Insufficient is set when the evaluator fell back to the neutral score
	Insufficient bool `json:"insufficient"`
}

// AggregateResult is the per-instrument outcome of one run. Not persisted.
// ⭐ SSOT: Analyzer → Reporter 전달 데이터
type AggregateResult struct {
	Instrument   Instrument        `json:"instrument"`
	Date         time.Time         `json:"date"`
	CurrentPrice float64           `json:"current_price"`
	Change       float64           `json:"change"`
	ChangeRate   float64           `json:"change_rate"` // percent
	Evaluations  []EvaluatorResult `json:"evaluations"`
	OverallScore float64           `json:"overall_score"`
	OverallTier  Tier              `json:"overall_tier"`
}

// Evaluation returns the result of the named evaluator
func (r AggregateResult) Evaluation(name string) (EvaluatorResult, bool) {
	for _, e := range r.Evaluations {
		if e.Name == name {
			return e, true
		}
	}
	return EvaluatorResult{}, false
}

// ReportRecord is a rendered report, unique per (market, date, format)
type ReportRecord struct {
	Market    string    `json:"market"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
