package commands

import (
	"fmt"

	"github.com/wonny/stocksignal/internal/analyzer"
	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/report"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintDoubleSeparator()
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// printRunSummary prints one market run
func printRunSummary(s *analyzer.RunSummary) {
	PrintHeader(fmt.Sprintf("📊 %s 시장 분석 (%s)", report.MarketName(s.Market), s.Date.Format(contracts.DateLayout)))

	if len(s.Results) > 0 {
		widths := []int{14, 12, 8, 8, 6}
		PrintTableHeader([]string{"종목", "현재가", "등락", "점수", "평가"}, widths)
		for _, r := range s.Results {
			name := r.Instrument.Name
			if name == "" {
				name = r.Instrument.Code
			}
			PrintTableRow([]string{
				name,
				report.FormatPrice(r.Instrument, r.CurrentPrice),
				report.FormatChangeRate(r.ChangeRate),
				fmt.Sprintf("%.2f", r.OverallScore),
				r.OverallTier.Marker,
			}, widths)
		}
		fmt.Println()
	}

	for _, sk := range s.Skipped {
		PrintWarning(fmt.Sprintf("[%s] 건너뜀: %s", sk.Code, sk.Reason))
	}
	for _, p := range s.Reports {
		PrintSuccess("리포트: " + p)
	}
	fmt.Printf("완료: %d개 평가, %d개 건너뜀 (%.2fs)\n", len(s.Results), len(s.Skipped), s.Duration.Seconds())
}
