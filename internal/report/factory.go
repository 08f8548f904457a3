package report

import (
	"fmt"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/pkg/logger"
)

// New returns the reporter for a format name (markdown, html)
func New(format, outputDir string, commentator Commentator, log *logger.Logger) (contracts.Reporter, error) {
	switch format {
	case "markdown", "md":
		return NewMarkdownReporter(outputDir, commentator, log), nil
	case "html":
		return NewHTMLReporter(outputDir, commentator, log), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
