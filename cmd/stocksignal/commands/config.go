package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/stocksignal/internal/analysisconfig"
	"github.com/wonny/stocksignal/pkg/config"
)

// configCmd validates the analysis configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "분석 설정 검증",
	Long: `stocks.yml / evaluators.yml / report.yml 을 검증하고 설정 해시와 경고를 출력합니다.

Example:
  go run ./cmd/stocksignal config --config-dir ./config`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	dir := configDir
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dir = cfg.ConfigDir
	}

	analysis, err := analysisconfig.Load(dir)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := analysisconfig.Hash(analysis)
	if err != nil {
		return err
	}

	PrintHeader("Analysis config: " + dir)
	fmt.Printf("  종목       : kr %d개, us %d개\n", len(analysis.Stocks.KR), len(analysis.Stocks.US))
	fmt.Printf("  수집 기간  : %d일 (평가 %d봉)\n", analysis.Stocks.DataConfig.Days, analysis.Stocks.DataConfig.HistoryLimit)
	fmt.Printf("  평가기     : %s\n", strings.Join(analysis.Evaluators.Enabled, ", "))
	fmt.Printf("  리포트     : %s → %s\n", analysis.Report.Format, analysis.Report.OutputDir)
	fmt.Printf("  Hash       : %s\n", hash[:16])
	PrintSeparator()

	warnings := analysisconfig.Warn(analysis)
	for _, w := range warnings {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}
	PrintSuccess("설정 검증 통과")
	return nil
}
