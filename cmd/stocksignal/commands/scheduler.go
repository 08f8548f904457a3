package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/scheduler"
	"github.com/wonny/stocksignal/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `시장별 일일 분석을 스케줄합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록과 다음 실행 시각
  run     - 특정 작업 즉시 실행

스케줄은 report.yml의 schedule.kr / schedule.us (초 포함 cron)에서 읽습니다.

Example:
  go run ./cmd/stocksignal scheduler start
  go run ./cmd/stocksignal scheduler run analysis_kr`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long:  `스케줄러를 시작합니다. Ctrl+C로 종료할 수 있습니다.`,
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	PrintHeader("stocksignal scheduler")

	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()
	PrintSuccess("Scheduler started")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printStats(sched)
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	sched.Start()
	defer sched.Stop()
	printJobs(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("Running job: %s\n", jobName)

	a, sched, err := initScheduler(context.Background())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	res, err := sched.RunJob(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !res.Success {
		PrintError(fmt.Sprintf("%s failed: %s", jobName, res.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s (analyzed %d, skipped %d, reports %d)",
		jobName, res.Duration, res.Counts.Analyzed, res.Counts.Skipped, res.Counts.Reports))
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	fmt.Println("Registered jobs:")
	for _, name := range sched.GetAllJobs() {
		if next, ok := sched.NextRun(name); ok && !next.IsZero() {
			fmt.Printf("  - %s (next: %s)\n", name, next.Format("2006-01-02 15:04:05"))
			continue
		}
		fmt.Printf("  - %s\n", name)
	}
}

func printStats(sched *scheduler.Scheduler) {
	for name, stat := range sched.GetJobStats() {
		fmt.Printf("📊 %s  runs=%d success=%d failures=%d analyzed=%d skipped=%d\n",
			name, stat.TotalRuns, stat.SuccessCount, stat.FailureCount, stat.Totals.Analyzed, stat.Totals.Skipped)
	}
}

func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, nil, err
	}

	an, err := a.analyzer()
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	sched := scheduler.New(a.log)
	for _, group := range []string{contracts.GroupKR, contracts.GroupUS} {
		schedule := a.analysis.Report.Schedule.For(group)
		if schedule == "" || len(a.analysis.Stocks.Instruments(group)) == 0 {
			continue
		}
		if err := sched.AddJob(jobs.NewAnalysisJob(an, group, schedule, a.log)); err != nil {
			a.Close()
			return nil, nil, err
		}
	}
	return a, sched, nil
}
