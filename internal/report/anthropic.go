package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/stocksignal/internal/contracts"
	"github.com/wonny/stocksignal/pkg/httputil"
	"github.com/wonny/stocksignal/pkg/logger"
)

const anthropicVersion = "2023-06-01"

// AnthropicCommentator asks the Messages API for narrative text and falls
// back to RuleCommentator on any failure.
type AnthropicCommentator struct {
	client   *httputil.Client
	baseURL  string
	model    string
	fallback RuleCommentator
	logger   *logger.Logger
}

var _ Commentator = (*AnthropicCommentator)(nil)

// NewAnthropicCommentator creates a commentator. client must carry the
// x-api-key header.
func NewAnthropicCommentator(client *httputil.Client, baseURL, apiKey, model string, log *logger.Logger) *AnthropicCommentator {
	client.WithHeader("x-api-key", apiKey).WithHeader("anthropic-version", anthropicVersion)
	return &AnthropicCommentator{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		logger:  log.WithField("module", "report.anthropic"),
	}
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// MarketSummary returns a 3-4 sentence market overview
func (c *AnthropicCommentator) MarketSummary(ctx context.Context, market string, results []contracts.AggregateResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "당신은 주식 시장 애널리스트입니다. 오늘 %s 주식 시장의 기술적 분석 결과를 요약해주세요.\n\n", MarketName(market))
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: 현재가 %s (%s)", displayName(r.Instrument), FormatPrice(r.Instrument, r.CurrentPrice), FormatChangeRate(r.ChangeRate))
		for _, e := range r.Evaluations {
			fmt.Fprintf(&b, ", %s %.1f점", EvaluatorLabel(e.Name), e.Verdict.Score)
		}
		fmt.Fprintf(&b, ", 종합평가 %.2f점\n", r.OverallScore)
	}
	b.WriteString("\n시장 전반의 동향을 3-4문장으로 요약하되, 전반적인 분위기와 주목할 종목, 유의할 점을 포함해주세요. 이모지는 사용하지 마세요.")

	text, err := c.complete(ctx, b.String(), 500)
	if err != nil {
		c.logger.WithError(err).Warn("Market summary failed, using rules")
		return c.fallback.MarketSummary(ctx, market, results)
	}
	return text, nil
}

// StockAnalysis returns a 2-3 sentence comment on one instrument
func (c *AnthropicCommentator) StockAnalysis(ctx context.Context, r contracts.AggregateResult) (string, error) {
	var b strings.Builder
	b.WriteString("당신은 주식 애널리스트입니다. 다음 기술적 분석 결과를 투자자가 이해하기 쉽게 해설해주세요.\n\n")
	fmt.Fprintf(&b, "종목: %s (%s)\n", displayName(r.Instrument), r.Instrument.Code)
	fmt.Fprintf(&b, "현재가: %s\n등락률: %s\n\n", FormatPrice(r.Instrument, r.CurrentPrice), FormatChangeRate(r.ChangeRate))
	for _, e := range r.Evaluations {
		fmt.Fprintf(&b, "%s: 점수 %.1f/4.0, 코멘트 %s\n", EvaluatorLabel(e.Name), e.Verdict.Score, e.Verdict.Comment)
	}
	fmt.Fprintf(&b, "\n종합 평가: %.2f/4.0\n\n2-3문장으로 간결하게 설명하되 투자 시사점을 포함해주세요. 이모지는 사용하지 마세요.", r.OverallScore)

	text, err := c.complete(ctx, b.String(), 300)
	if err != nil {
		c.logger.WithError(err).WithField("code", r.Instrument.Code).Warn("Stock analysis failed, using rules")
		return c.fallback.StockAnalysis(ctx, r)
	}
	return text, nil
}

func (c *AnthropicCommentator) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.PostJSON(ctx, c.baseURL+"/v1/messages", messageRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out messageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("anthropic %s: %s", out.Error.Type, out.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return "", &httputil.StatusError{StatusCode: resp.StatusCode}
	}

	for _, block := range out.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("empty completion")
}
