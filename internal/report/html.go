package report

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/pkg/logger"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html.tmpl"))

// HTMLReporter renders a self-contained HTML page
type HTMLReporter struct {
	saver       fileSaver
	commentator Commentator
	logger      *logger.Logger
}

var _ contracts.Reporter = (*HTMLReporter)(nil)

// NewHTMLReporter creates a reporter writing into outputDir.
// A nil commentator omits the market summary.
func NewHTMLReporter(outputDir string, commentator Commentator, log *logger.Logger) *HTMLReporter {
	return &HTMLReporter{
		saver:       fileSaver{dir: outputDir, ext: ".html"},
		commentator: commentator,
		logger:      log.WithField("module", "report.html"),
	}
}

func (r *HTMLReporter) Format() string { return "html" }

type htmlPage struct {
	MarketName string
	Date       string
	Subtitle   string
	Columns    []string
	Rows       []htmlRow
	Summary    string
	Disclaimer string
}

type htmlRow struct {
	Main    string
	Sub     string
	Price   string
	Change  string
	Color   string
	Markers []htmlMarker
	Overall string
	Comment string
}

type htmlMarker struct {
	Label  string
	Marker string
}

// Generate renders results as HTML
func (r *HTMLReporter) Generate(ctx context.Context, market string, date time.Time, results []contracts.AggregateResult) (string, error) {
	cols := evaluatorColumns(results)
	page := htmlPage{
		MarketName: MarketName(market),
		Date:       date.Format(contracts.DateLayout),
		Subtitle:   "기술적 지표 요약",
		Disclaimer: disclaimer,
	}
	for _, c := range cols {
		page.Columns = append(page.Columns, EvaluatorLabel(c))
	}

	for _, res := range results {
		// 미국은 코드가 메인
		main, sub := displayName(res.Instrument), res.Instrument.Code
		if market == contracts.GroupUS {
			main, sub = res.Instrument.Code, res.Instrument.Name
		}

		row := htmlRow{
			Main:    main,
			Sub:     sub,
			Price:   FormatPrice(res.Instrument, res.CurrentPrice),
			Change:  FormatChangeRate(res.ChangeRate),
			Color:   changeColor(res.ChangeRate),
			Overall: res.OverallTier.Marker,
			Comment: primaryComment(res),
		}
		for _, c := range cols {
			m := htmlMarker{Label: EvaluatorLabel(c), Marker: "❓"}
			if e, ok := res.Evaluation(c); ok {
				m.Marker = e.Verdict.Signal.Marker()
			}
			row.Markers = append(row.Markers, m)
		}
		page.Rows = append(page.Rows, row)
	}

	if r.commentator != nil {
		summary, err := r.commentator.MarketSummary(ctx, market, results)
		if err != nil {
			return "", fmt.Errorf("market summary: %w", err)
		}
		page.Summary = summary
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

// Save writes <output_dir>/<market>_<date>.html
func (r *HTMLReporter) Save(market string, date time.Time, content string) (string, error) {
	path, err := r.saver.save(market, date, content)
	if err != nil {
		return "", err
	}
	r.logger.WithField("path", path).Info("HTML report saved")
	return path, nil
}

// 한국 기준: 상승=빨강, 하락=파랑
func changeColor(rate float64) string {
	switch {
	case rate > 0:
		return "text-red-600"
	case rate < 0:
		return "text-blue-600"
	default:
		return "text-gray-900"
	}
}
