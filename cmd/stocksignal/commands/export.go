package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/wonny/stocksignal/internal/analyzer"
	"github.com/wonny/stocksignal/internal/datasource"
)

var (
	exportMarket string
	exportFormat string
	exportDir    string
)

// exportCmd fetches live bars and writes a file corpus for DATA_SOURCE=file
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "파일 코퍼스 생성",
	Long: `실시간 데이터 소스에서 일봉을 받아 파일 코퍼스(<dir>/kr|us/<code>.json|.parquet)로 저장합니다.
저장된 코퍼스는 DATA_SOURCE=file 로 오프라인 분석에 사용할 수 있습니다.

Example:
  go run ./cmd/stocksignal export -m all --format parquet`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportMarket, "market", "m", "all", "시장 (kr, us, all)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "파일 형식 (json, parquet)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "출력 디렉토리 (기본값: DATA_DIR)")
}

func runExport(cmd *cobra.Command, args []string) error {
	groups, err := analyzer.Groups(exportMarket)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	dir := exportDir
	if dir == "" {
		dir = a.cfg.Source.DataDir
	}

	src := a.liveSource()
	limiter := rate.NewLimiter(rate.Every(a.cfg.Source.FetchDelay), 1)
	end := today()
	start := end.AddDate(0, 0, -a.analysis.Stocks.DataConfig.Days)

	written, failed := 0, 0
	for _, group := range groups {
		for _, inst := range a.analysis.Stocks.Instruments(group) {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			rows, err := src.Collect(ctx, inst.Code, inst.Market, start, end)
			if err != nil || len(rows) == 0 {
				failed++
				PrintWarning(fmt.Sprintf("[%s] 수집 실패: %v", inst.Code, err))
				continue
			}
			path, err := datasource.WriteCorpus(dir, inst, rows, exportFormat)
			if err != nil {
				return err
			}
			written++
			PrintSuccess(fmt.Sprintf("[%s] %d rows → %s", inst.Code, len(rows), path))
		}
	}

	fmt.Printf("\n완료: %d개 저장, %d개 실패\n", written, failed)
	return nil
}
