package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	analyzeMarket string
	analyzeDate   string
	analyzeForce  bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "시장 분석 및 리포트 생성",
	Long: `설정된 종목을 분석하고 리포트를 생성합니다.

이 명령어는:
- 저장된 시세가 기준일 이상이면 캐시 사용, 아니면 데이터 소스에서 수집
- 평가기(볼린저 밴드, 일목균형표) 실행 및 결과 저장
- 종합 점수 계산 후 리포트 저장

Example:
  go run ./cmd/stocksignal analyze -m kr
  go run ./cmd/stocksignal analyze -m all -d 2025-03-14 --force`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeMarket, "market", "m", "kr", "분석할 시장 (kr, us, all)")
	analyzeCmd.Flags().StringVarP(&analyzeDate, "date", "d", "", "분석 날짜 (YYYY-MM-DD, 기본값: 오늘)")
	analyzeCmd.Flags().BoolVarP(&analyzeForce, "force", "f", false, "캐시 무시하고 데이터 강제 업데이트")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	runDate, err := parseRunDate(analyzeDate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}
	defer a.Close()

	an, err := a.analyzer()
	if err != nil {
		PrintError(err.Error())
		return err
	}

	summaries, err := an.RunMarkets(ctx, analyzeMarket, runDate, analyzeForce)
	for _, s := range summaries {
		printRunSummary(s)
	}
	if err != nil {
		PrintError(err.Error())
		return fmt.Errorf("analyze: %w", err)
	}
	return nil
}
