package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/stocksignal/internal/contracts"
)

// Commentator writes narrative text for a report
// ⭐ SSOT: 리포트 해설 생성 인터페이스
//
// Output is not reproducible for LLM-backed implementations.
type Commentator interface {
	MarketSummary(ctx context.Context, market string, results []contracts.AggregateResult) (string, error)
	StockAnalysis(ctx context.Context, result contracts.AggregateResult) (string, error)
}

// RuleCommentator builds deterministic text from scores and comments
type RuleCommentator struct{}

var _ Commentator = RuleCommentator{}

// MarketSummary counts instruments per signal bucket
func (RuleCommentator) MarketSummary(_ context.Context, market string, results []contracts.AggregateResult) (string, error) {
	s := Summarize(results)

	var parts []string
	if s.StrongBuy > 0 {
		parts = append(parts, fmt.Sprintf("%d개 종목이 강한 매수 신호", s.StrongBuy))
	}
	if s.Buy > 0 {
		parts = append(parts, fmt.Sprintf("%d개 종목이 매수 신호", s.Buy))
	}
	if s.Hold > 0 {
		parts = append(parts, fmt.Sprintf("%d개 종목이 중립 신호", s.Hold))
	}
	if s.Sell > 0 {
		parts = append(parts, fmt.Sprintf("%d개 종목이 주의 신호", s.Sell))
	}

	summary := fmt.Sprintf("%s 시장 전체 %d개 종목 중 ", MarketName(market), s.Total)
	if len(parts) == 0 {
		return strings.TrimSpace(summary) + ".", nil
	}
	return summary + strings.Join(parts, ", ") + "를 보이고 있습니다.", nil
}

// StockAnalysis joins the evaluator comments
func (RuleCommentator) StockAnalysis(_ context.Context, r contracts.AggregateResult) (string, error) {
	comments := make([]string, 0, len(r.Evaluations))
	for _, e := range r.Evaluations {
		if e.Verdict.Comment == "" {
			continue
		}
		comments = append(comments, fmt.Sprintf("%s: %s", EvaluatorLabel(e.Name), e.Verdict.Comment))
	}
	return strings.Join(comments, " / "), nil
}
