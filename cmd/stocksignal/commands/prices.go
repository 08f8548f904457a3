package commands

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/store"
)

var pricesLimit int

// pricesCmd prints the stored series of one instrument
var pricesCmd = &cobra.Command{
	Use:   "prices [code]",
	Short: "저장된 일봉 조회",
	Long: `저장소에 캐시된 일봉을 최신순으로 출력합니다.

Example:
  go run ./cmd/stocksignal prices 005930 --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	pricesCmd.Flags().IntVarP(&pricesLimit, "limit", "n", 20, "출력할 봉 수")
}

func runPrices(cmd *cobra.Command, args []string) error {
	code := args[0]
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	series, err := a.store.QueryPrices(ctx, code, store.PriceQuery{Limit: pricesLimit})
	if err != nil {
		return fmt.Errorf("query prices: %w", err)
	}
	if len(series) == 0 {
		PrintWarning(fmt.Sprintf("[%s] 저장된 데이터 없음", code))
		return nil
	}

	inst, ok := a.analysis.Stocks.Lookup(code)
	if !ok {
		inst = contracts.Instrument{Code: code}
	}
	PrintHeader(fmt.Sprintf("%s %s (%d봉)", inst.Code, inst.Name, len(series)))

	widths := []int{10, 14, 14, 14, 14, 14}
	PrintTableHeader([]string{"날짜", "시가", "고가", "저가", "종가", "거래량"}, widths)
	for _, p := range series {
		PrintTableRow([]string{
			p.Date.Format(contracts.DateLayout),
			humanize.CommafWithDigits(p.Open, 2),
			humanize.CommafWithDigits(p.High, 2),
			humanize.CommafWithDigits(p.Low, 2),
			humanize.CommafWithDigits(p.Close, 2),
			humanize.Comma(p.Volume),
		}, widths)
	}
	return nil
}
