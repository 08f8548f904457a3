package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/pkg/logger"
)

// MarkdownReporter renders a Markdown report
type MarkdownReporter struct {
	saver       fileSaver
	commentator Commentator
	logger      *logger.Logger
}

var _ contracts.Reporter = (*MarkdownReporter)(nil)

// NewMarkdownReporter creates a reporter writing into outputDir.
// A nil commentator omits the narrative sections.
func NewMarkdownReporter(outputDir string, commentator Commentator, log *logger.Logger) *MarkdownReporter {
	return &MarkdownReporter{
		saver:       fileSaver{dir: outputDir, ext: ".md"},
		commentator: commentator,
		logger:      log.WithField("module", "report.markdown"),
	}
}

func (r *MarkdownReporter) Format() string { return "markdown" }

// Generate renders results as Markdown
func (r *MarkdownReporter) Generate(ctx context.Context, market string, date time.Time, results []contracts.AggregateResult) (string, error) {
	var b strings.Builder
	cols := evaluatorColumns(results)

	fmt.Fprintf(&b, "# 📊 %s 주식 분석 리포트\n", MarketName(market))
	fmt.Fprintf(&b, "**날짜**: %s\n\n---\n\n", date.Format(contracts.DateLayout))

	// 표
	b.WriteString("| 종목명 |")
	for _, c := range cols {
		fmt.Fprintf(&b, " %s |", EvaluatorLabel(c))
	}
	b.WriteString(" 평가 | 기타 |\n|--------|")
	for range cols {
		b.WriteString("-----------|")
	}
	b.WriteString("------|------|\n")

	for _, res := range results {
		fmt.Fprintf(&b, "| %s |", escapeCell(displayName(res.Instrument)))
		comments := make([]string, 0, len(cols))
		for _, c := range cols {
			e, ok := res.Evaluation(c)
			if !ok {
				b.WriteString(" ⚠️ |")
				continue
			}
			fmt.Fprintf(&b, " %s |", e.Verdict.Signal.Marker())
			comments = append(comments, truncateRunes(e.Verdict.Comment, 20))
		}
		other := "💰 " + FormatPrice(res.Instrument, res.CurrentPrice)
		if len(comments) > 0 {
			other += " | " + strings.Join(comments, " | ")
		}
		fmt.Fprintf(&b, " %s | %s |\n", res.OverallTier.Marker, escapeCell(other))
	}

	// 종합 평가
	s := Summarize(results)
	b.WriteString("\n---\n\n## 📈 종합 평가\n\n")
	if s.Best != nil {
		fmt.Fprintf(&b, "- **최고 평가** %s: %s\n", s.Best.OverallTier.Marker, displayName(s.Best.Instrument))
	}
	if len(s.Positive) > 0 {
		fmt.Fprintf(&b, "- **긍정적** 👍: %s\n", strings.Join(s.Positive, ", "))
	}
	if len(s.Neutral) > 0 {
		fmt.Fprintf(&b, "- **중립** 👌: %s\n", strings.Join(s.Neutral, ", "))
	}
	if len(s.Caution) > 0 {
		fmt.Fprintf(&b, "- **주의** 👎: %s\n", strings.Join(s.Caution, ", "))
	}

	// 시황 요약
	b.WriteString("\n## 💡 시황 요약\n\n")
	fmt.Fprintf(&b, "- 총 %d개 종목 분석\n", s.Total)
	if s.StrongBuy > 0 {
		fmt.Fprintf(&b, "- 강한 매수 신호 🔥: %d개\n", s.StrongBuy)
	}
	if s.Buy > 0 {
		fmt.Fprintf(&b, "- 매수 신호 👍: %d개\n", s.Buy)
	}
	if s.Hold > 0 {
		fmt.Fprintf(&b, "- 중립/관망 👌: %d개\n", s.Hold)
	}
	if s.Sell > 0 {
		fmt.Fprintf(&b, "- 주의/매도 고려 👎: %d개\n", s.Sell)
	}

	if r.commentator != nil {
		summary, err := r.commentator.MarketSummary(ctx, market, results)
		if err != nil {
			return "", fmt.Errorf("market summary: %w", err)
		}
		fmt.Fprintf(&b, "\n### 💬 시장 분석\n%s\n", summary)

		b.WriteString("\n---\n\n## 📝 종목별 상세 분석\n\n")
		for _, res := range results {
			comment, err := r.commentator.StockAnalysis(ctx, res)
			if err != nil {
				return "", fmt.Errorf("stock analysis %s: %w", res.Instrument.Code, err)
			}
			fmt.Fprintf(&b, "### %s %s\n", res.OverallTier.Marker, displayName(res.Instrument))
			fmt.Fprintf(&b, "**현재가**: %s (%s)\n\n%s\n\n",
				FormatPrice(res.Instrument, res.CurrentPrice), FormatChangeRate(res.ChangeRate), comment)
		}
	}

	fmt.Fprintf(&b, "\n---\n\n⚠️ *%s*\n", disclaimer)
	return b.String(), nil
}

// Save writes <output_dir>/<market>_<date>.md
func (r *MarkdownReporter) Save(market string, date time.Time, content string) (string, error) {
	path, err := r.saver.save(market, date, content)
	if err != nil {
		return "", err
	}
	r.logger.WithField("path", path).Info("Markdown report saved")
	return path, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
