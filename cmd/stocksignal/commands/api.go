package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stocksignal/internal/api"
	"github.com/wonny/stocksignal/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `저장된 시세/평가/리포트를 조회하는 읽기 전용 REST API 서버를 시작합니다.

Endpoints:
  GET /health                                 - Health check
  GET /api/stocks/{code}/prices?limit=        - 저장된 일봉 (최신순)
  GET /api/stocks/{code}/evaluations/{date}   - 평가 결과
  GET /api/reports/{market}/{date}?format=    - 리포트 본문

Example:
  go run ./cmd/stocksignal api
  go run ./cmd/stocksignal api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	PrintHeader("stocksignal API server")

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	router := api.NewRouter(
		handlers.NewStockHandler(a.store, a.analysis.Stocks, a.log),
		handlers.NewReportHandler(a.store, a.log),
		a.log,
	)
	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ API server listening on :%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
