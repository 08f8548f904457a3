package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/evaluator"
)

// Summary bucket bounds on the overall score
const (
	positiveMin = 2.75
	neutralMin  = 2.0
	strongMin   = 3.5
)

const disclaimer = "이는 기술적 분석 참고 자료이며, 투자 판단은 본인 책임하에 진행하세요."

var evaluatorLabels = map[string]string{
	evaluator.BandName:  "볼린저밴드",
	evaluator.CloudName: "일목균형표",
}

// EvaluatorLabel returns the display label of an evaluator
func EvaluatorLabel(name string) string {
	if l, ok := evaluatorLabels[name]; ok {
		return l
	}
	return name
}

// MarketName returns the display name of a market group
func MarketName(group string) string {
	if group == contracts.GroupKR {
		return "한국"
	}
	return "미국"
}

// FormatPrice renders a price in the instrument's currency: 165,800원 or $1,234.56
func FormatPrice(inst contracts.Instrument, price float64) string {
	if inst.IsDomestic() {
		return humanize.Comma(int64(math.Round(price))) + "원"
	}
	return "$" + humanize.FormatFloat("#,###.##", price)
}

// FormatChangeRate renders a percent change with an explicit sign
func FormatChangeRate(rate float64) string {
	return fmt.Sprintf("%+.2f%%", rate)
}

// Summary groups results into report buckets
type Summary struct {
	Total     int
	Best      *contracts.AggregateResult
	Positive  []string // >= 2.75
	Neutral   []string // 2.0 ~ 2.75
	Caution   []string // < 2.0
	StrongBuy int      // >= 3.5
	Buy       int      // 2.75 ~ 3.5
	Hold      int
	Sell      int
}

// Summarize computes report buckets
func Summarize(results []contracts.AggregateResult) Summary {
	s := Summary{Total: len(results)}
	for i := range results {
		r := &results[i]
		if s.Best == nil || r.OverallScore > s.Best.OverallScore {
			s.Best = r
		}

		name := displayName(r.Instrument)
		switch {
		case r.OverallScore >= positiveMin:
			s.Positive = append(s.Positive, name)
			if r.OverallScore >= strongMin {
				s.StrongBuy++
			} else {
				s.Buy++
			}
		case r.OverallScore >= neutralMin:
			s.Neutral = append(s.Neutral, name)
			s.Hold++
		default:
			s.Caution = append(s.Caution, name)
			s.Sell++
		}
	}
	return s
}

// evaluatorColumns returns evaluator names in first-seen order across results
func evaluatorColumns(results []contracts.AggregateResult) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range results {
		for _, e := range r.Evaluations {
			if !seen[e.Name] {
				seen[e.Name] = true
				cols = append(cols, e.Name)
			}
		}
	}
	return cols
}

// primaryComment picks the comment shown next to an instrument
func primaryComment(r contracts.AggregateResult) string {
	for _, e := range r.Evaluations {
		if !e.Insufficient && e.Verdict.Comment != "" {
			return e.Verdict.Comment
		}
	}
	if len(r.Evaluations) > 0 {
		return r.Evaluations[0].Verdict.Comment
	}
	return ""
}

func displayName(inst contracts.Instrument) string {
	if inst.Name != "" {
		return inst.Name
	}
	return inst.Code
}

// fileSaver writes <dir>/<market>_<date><ext>
type fileSaver struct {
	dir string
	ext string
}

func (f fileSaver) save(market string, date time.Time, content string) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(f.dir, fmt.Sprintf("%s_%s%s", market, date.Format(contracts.DateLayout), f.ext))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
