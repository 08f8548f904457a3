package evaluator

import (
	"fmt"
	"math"

	"github.com/wonny/stocksignal/internal/contracts"
)

// BandName is the registry name of the Bollinger band evaluator
const BandName = "bollinger"

// BandEvaluator scores the latest close against mean ± k·σ of recent closes
type BandEvaluator struct {
	period     int
	multiplier float64
	weight     float64
}

// NewBandEvaluator creates a band evaluator. Defaults: period 20, multiplier 2.0.
func NewBandEvaluator(params Params) (*BandEvaluator, error) {
	period, err := params.Int("period", 20)
	if err != nil {
		return nil, err
	}
	if period < 2 {
		return nil, fmt.Errorf("period must be at least 2, got %d", period)
	}
	multiplier, err := params.Float("std_multiplier", 2.0)
	if err != nil {
		return nil, err
	}
	weight, err := params.weight()
	if err != nil {
		return nil, err
	}
	return &BandEvaluator{period: period, multiplier: multiplier, weight: weight}, nil
}

func (e *BandEvaluator) Name() string    { return BandName }
func (e *BandEvaluator) Weight() float64 { return e.weight }

type bandState struct {
	sma, stdev   float64
	upper, lower float64
	current      float64
	position     float64
}

func (e *BandEvaluator) compute(series contracts.PriceSeries) (bandState, bool) {
	if len(series) < e.period {
		return bandState{}, false
	}

	closes := series.Closes(e.period)
	mean := 0.0
	for _, c := range closes {
		mean += c
	}
	mean /= float64(len(closes))

	// sample standard deviation (n-1)
	ss := 0.0
	for _, c := range closes {
		ss += (c - mean) * (c - mean)
	}
	stdev := math.Sqrt(ss / float64(len(closes)-1))

	st := bandState{
		sma:     mean,
		stdev:   stdev,
		upper:   mean + e.multiplier*stdev,
		lower:   mean - e.multiplier*stdev,
		current: closes[0],
	}

	st.position = bandPosition(st.current, st.lower, st.upper)
	return st, true
}

// bandPosition is where current sits in the band, in percent. Not clamped:
// outside the band it goes below 0 or above 100. A zero-width band is 50.
func bandPosition(current, lower, upper float64) float64 {
	if upper == lower {
		return 50
	}
	return (current - lower) / (upper - lower) * 100
}

func bandVerdict(position float64) contracts.Verdict {
	switch {
	case position <= 25:
		return contracts.Verdict{Score: 4, Signal: contracts.SignalStrongBuy, Comment: fmt.Sprintf("하단 근처 %.0f%%, 반등 기대", position)}
	case position <= 50:
		return contracts.Verdict{Score: 3, Signal: contracts.SignalBuy, Comment: fmt.Sprintf("중립 %.0f%%, 관망", position)}
	case position <= 80:
		return contracts.Verdict{Score: 2, Signal: contracts.SignalSell, Comment: fmt.Sprintf("과열 %.0f%%, 조정 주의", position)}
	default:
		return contracts.Verdict{Score: 1, Signal: contracts.SignalStrongSell, Comment: fmt.Sprintf("과매수 %.0f%%, 매도 고려", position)}
	}
}

// Evaluate maps the band position to a score
func (e *BandEvaluator) Evaluate(series contracts.PriceSeries) contracts.Verdict {
	st, ok := e.compute(series)
	if !ok {
		return neutralVerdict()
	}
	return bandVerdict(st.position)
}

// Details returns the band diagnostics
func (e *BandEvaluator) Details(series contracts.PriceSeries) map[string]interface{} {
	st, ok := e.compute(series)
	if !ok {
		return insufficientDetails(e.period, len(series))
	}

	v := bandVerdict(st.position)
	return map[string]interface{}{
		"sma":      round(st.sma, 4),
		"stdev":    round(st.stdev, 4),
		"upper":    round(st.upper, 4),
		"lower":    round(st.lower, 4),
		"current":  st.current,
		"position": round(st.position, 2),
		"period":   e.period,
		"score":    v.Score,
		"signal":   v.Signal.String(),
	}
}
