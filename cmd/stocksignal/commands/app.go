package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stocksignal/internal/analysisconfig"
	"github.com/wonny/stocksignal/internal/analyzer"
	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/internal/datasource"
	"github.com/wonny/stocksignal/internal/evaluator"
	"github.com/wonny/stocksignal/internal/external/naver"
	"github.com/wonny/stocksignal/internal/external/yahoo"
	"github.com/wonny/stocksignal/internal/report"
	"github.com/wonny/stocksignal/internal/store"
	"github.com/wonny/stocksignal/internal/store/postgres"
	"github.com/wonny/stocksignal/internal/store/sqlite"
	"github.com/wonny/stocksignal/pkg/config"
	"github.com/wonny/stocksignal/pkg/database"
	"github.com/wonny/stocksignal/pkg/httputil"
	"github.com/wonny/stocksignal/pkg/logger"
	"github.com/wonny/stocksignal/pkg/redis"
)

// app holds process-wide dependencies opened once at startup
type app struct {
	cfg      *config.Config
	analysis *analysisconfig.Config
	log      *logger.Logger
	store    store.Store
	redis    *redis.Client
}

// newApp loads configuration and opens the store. Any failure here is fatal.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}

	log := logger.New(cfg)

	analysis, err := analysisconfig.Load(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("load analysis config: %w", err)
	}
	for _, w := range analysisconfig.Warn(analysis) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	if cfg.ReportDir != "" {
		analysis.Report.OutputDir = cfg.ReportDir
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &app{cfg: cfg, analysis: analysis, log: log, store: st, redis: rc}, nil
}

// Close releases the store and redis connections
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close store")
	}
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		st, err := postgres.New(ctx, db, log)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return st, nil
	default:
		st, err := sqlite.Open(ctx, cfg.Store.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return st, nil
	}
}

// source builds the configured data source
func (a *app) source() contracts.DataSource {
	if a.cfg.Source.Kind == "file" {
		return datasource.NewFileSource(a.cfg.Source.DataDir, a.log)
	}
	return a.liveSource()
}

func (a *app) liveSource() *datasource.LiveSource {
	// 클라이언트별 헤더가 다르므로 별도 인스턴스 사용
	naverClient := naver.NewClient(httputil.New(a.log), a.log, a.cfg.Source.NaverBaseURL, a.cfg.Source.NaverChartURL)
	yahooClient := yahoo.NewClient(httputil.New(a.log), a.log, a.cfg.Source.YahooBaseURL)
	return datasource.NewLiveSource(naverClient, yahooClient, a.log)
}

// reporters builds one reporter per configured format
func (a *app) reporters() ([]contracts.Reporter, error) {
	var commentator report.Commentator = report.RuleCommentator{}
	if a.analysis.Report.UseLLM {
		if a.cfg.Anthropic.APIKey == "" {
			a.log.Warn("use_llm is set but ANTHROPIC_API_KEY is empty, using rule-based comments")
		} else {
			model := a.analysis.Report.LLMModel
			if model == "" {
				model = a.cfg.Anthropic.Model
			}
			hc := httputil.NewWithTimeout(a.log, 60*time.Second).WithRetry(2, 2*time.Second)
			commentator = report.NewAnthropicCommentator(hc, a.cfg.Anthropic.BaseURL, a.cfg.Anthropic.APIKey, model, a.log)
		}
	}

	var out []contracts.Reporter
	for _, format := range a.analysis.Report.Formats() {
		r, err := report.New(format, a.analysis.Report.OutputDir, commentator, a.log)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// analyzer wires the pipeline
func (a *app) analyzer() (*analyzer.Analyzer, error) {
	evals, err := evaluator.NewRegistry().Build(a.analysis.Evaluators.Enabled, a.analysis.Evaluators.Params)
	if err != nil {
		return nil, fmt.Errorf("build evaluators: %w", err)
	}

	reporters, err := a.reporters()
	if err != nil {
		return nil, err
	}

	an := analyzer.New(a.store, a.source(), evals, a.analysis.Stocks, analyzer.Options{
		LookbackDays: a.analysis.Stocks.DataConfig.Days,
		HistoryLimit: a.analysis.Stocks.DataConfig.HistoryLimit,
		FetchDelay:   a.cfg.Source.FetchDelay,
	}, a.log).WithReporters(reporters...)

	if a.redis.Enabled() {
		an = an.WithLocker(redis.NewLocker(a.redis, "stocksignal", a.cfg.Redis.LockTTL))
	}
	return an, nil
}

// today returns the current calendar day in KST
func today() time.Time {
	now := time.Now()
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		now = now.In(loc)
	}
	return contracts.CalendarDay(now)
}

// parseRunDate parses -d or defaults to today
func parseRunDate(s string) (time.Time, error) {
	if s == "" {
		return today(), nil
	}
	d, err := contracts.ParseDay(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
