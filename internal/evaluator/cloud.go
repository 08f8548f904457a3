package evaluator

import (
	"math"

	"github.com/wonny/stocksignal/internal/contracts"
)

// CloudName is the registry name of the Ichimoku cloud evaluator
const CloudName = "ichimoku"

// CloudEvaluator scores price against the Ichimoku conversion/base lines and cloud
type CloudEvaluator struct {
	conversion int
	base       int
	spanB      int
	weight     float64
}

// NewCloudEvaluator creates a cloud evaluator. Defaults: 9 / 26 / 52.
func NewCloudEvaluator(params Params) (*CloudEvaluator, error) {
	conversion, err := params.Int("conversion_period", 9)
	if err != nil {
		return nil, err
	}
	base, err := params.Int("base_period", 26)
	if err != nil {
		return nil, err
	}
	spanB, err := params.Int("span_b_period", 52)
	if err != nil {
		return nil, err
	}
	weight, err := params.weight()
	if err != nil {
		return nil, err
	}
	return &CloudEvaluator{conversion: conversion, base: base, spanB: spanB, weight: weight}, nil
}

func (e *CloudEvaluator) Name() string    { return CloudName }
func (e *CloudEvaluator) Weight() float64 { return e.weight }

type cloudState struct {
	conversion, base float64
	spanA, spanB     float64
	top, bottom      float64
	current          float64
	spanBFallback    bool
}

func midpoint(series contracts.PriceSeries, n int) float64 {
	high, low := series.HighLow(n)
	return (high + low) / 2
}

func (e *CloudEvaluator) compute(series contracts.PriceSeries) (cloudState, bool) {
	if len(series) < e.base || len(series) < e.conversion {
		return cloudState{}, false
	}

	st := cloudState{
		conversion: midpoint(series, e.conversion),
		base:       midpoint(series, e.base),
		current:    series[0].Close,
	}
	st.spanA = (st.conversion + st.base) / 2

	// short history collapses the cloud to zero width
	if len(series) < e.spanB {
		st.spanB = st.spanA
		st.spanBFallback = true
	} else {
		st.spanB = midpoint(series, e.spanB)
	}

	st.top = math.Max(st.spanA, st.spanB)
	st.bottom = math.Min(st.spanA, st.spanB)
	return st, true
}

func cloudVerdict(st cloudState) contracts.Verdict {
	convAbove := st.conversion > st.base
	priceAbove := st.current > st.top
	priceBelow := st.current < st.bottom

	switch {
	case convAbove && priceAbove:
		return contracts.Verdict{Score: 4, Signal: contracts.SignalStrongBuy, Comment: "전환선 상향 + 구름 위 - 강한 상승 추세"}
	case convAbove || priceAbove:
		return contracts.Verdict{Score: 3, Signal: contracts.SignalBuy, Comment: "상승 신호 일부 확인"}
	case priceBelow && st.conversion < st.base:
		return contracts.Verdict{Score: 1, Signal: contracts.SignalStrongSell, Comment: "전환선 하향 + 구름 아래 - 하락 추세"}
	default:
		return contracts.Verdict{Score: 2, Signal: contracts.SignalSell, Comment: "혼조 - 방향성 약함"}
	}
}

// Evaluate applies the conversion/cloud decision table
func (e *CloudEvaluator) Evaluate(series contracts.PriceSeries) contracts.Verdict {
	st, ok := e.compute(series)
	if !ok {
		return neutralVerdict()
	}
	return cloudVerdict(st)
}

// Details returns the cloud diagnostics
func (e *CloudEvaluator) Details(series contracts.PriceSeries) map[string]interface{} {
	st, ok := e.compute(series)
	if !ok {
		return insufficientDetails(e.base, len(series))
	}

	v := cloudVerdict(st)
	return map[string]interface{}{
		"conversion":      round(st.conversion, 4),
		"base":            round(st.base, 4),
		"span_a":          round(st.spanA, 4),
		"span_b":          round(st.spanB, 4),
		"cloud_top":       round(st.top, 4),
		"cloud_bottom":    round(st.bottom, 4),
		"current":         st.current,
		"span_b_fallback": st.spanBFallback,
		"score":           v.Score,
		"signal":          v.Signal.String(),
	}
}
