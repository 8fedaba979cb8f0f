package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/betbot/opsboard/internal/domain"
	"github.com/betbot/opsboard/internal/fixture"
	"github.com/betbot/opsboard/pkg/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// 通知渠道
const (
	ChannelLark = "lark"
	ChannelLog  = "log"
)

// Notifier 告警通知渠道
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, e domain.AlertEvent) error
}

// LogNotifier 仅写日志（未配置 webhook 时的兜底渠道）
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logrus.WithField("module", "alerting")}
}

func (n *LogNotifier) Channel() string { return ChannelLog }

func (n *LogNotifier) Notify(_ context.Context, e domain.AlertEvent) error {
	n.log.WithFields(logrus.Fields{
		"rule":  e.RuleID,
		"event": e.ID,
		"level": e.Level,
	}).Warn(fixture.AlertSummary(e))
	return nil
}

// LarkNotifier 飞书自定义机器人 webhook
type LarkNotifier struct {
	webhook string
	client  *resty.Client
	limiter ratelimit.Limiter
}

// LarkOptions webhook 配置
type LarkOptions struct {
	Webhook string
	Timeout time.Duration
	Retries int
}

// 飞书自定义机器人限流 5 次/秒
const larkRatePerSecond = 5

func NewLarkNotifier(opts LarkOptions) *LarkNotifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &LarkNotifier{
		webhook: strings.TrimSpace(opts.Webhook),
		client:  client,
		limiter: ratelimit.NewTokenBucket(larkRatePerSecond, time.Second),
	}
}

func (n *LarkNotifier) Channel() string { return ChannelLark }

type larkText struct {
	Text string `json:"text"`
}

type larkMessage struct {
	MsgType string   `json:"msg_type"`
	Content larkText `json:"content"`
}

type larkResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Message 通知正文
func Message(e domain.AlertEvent) string {
	return fmt.Sprintf("%s\n阈值: %s USDT\n时间: %s",
		fixture.AlertSummary(e), e.Threshold.String(), e.Time.Format("2006-01-02 15:04:05"))
}

func (n *LarkNotifier) Notify(ctx context.Context, e domain.AlertEvent) error {
	if n.webhook == "" {
		return errors.New("lark webhook not configured")
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "lark rate limit")
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(larkMessage{MsgType: "text", Content: larkText{Text: Message(e)}}).
		Post(n.webhook)
	if err != nil {
		return errors.Wrap(err, "lark webhook")
	}
	if !resp.IsSuccess() {
		return errors.Errorf("lark webhook: http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	// 飞书返回的 Content-Type 不总是 application/json，手动解析
	var out larkResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return errors.Wrap(err, "lark webhook: decode response")
	}
	if out.Code != 0 {
		return errors.Errorf("lark webhook: code %d: %s", out.Code, out.Msg)
	}
	return nil
}
