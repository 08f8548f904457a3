package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configDir string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocksignal",
	Short: "기술적 분석 시그널 리포트",
	Long: `stocksignal CLI

설정된 종목의 일봉을 수집/캐시하고 볼린저 밴드와 일목균형표로 평가한 뒤
종합 점수와 리포트를 생성합니다.

Usage:
  go run ./cmd/stocksignal [command]

Examples:
  go run ./cmd/stocksignal analyze -m kr
  go run ./cmd/stocksignal analyze -m all -d 2025-03-14 -f
  go run ./cmd/stocksignal scheduler start
  go run ./cmd/stocksignal api
  go run ./cmd/stocksignal test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "분석 설정 디렉토리 (기본값: CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
