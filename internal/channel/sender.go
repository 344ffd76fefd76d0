package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/logger"

	"go.uber.org/zap"
)

// ErrUnknownChannel 未注册的渠道
var ErrUnknownChannel = errors.New("channel: unknown channel")

// Message 待发送的消息
type Message struct {
	To      string `json:"to" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// SendResult 发送结果
type SendResult struct {
	Channel   string    `json:"channel"`
	MessageID string    `json:"messageId"`
	Simulated bool      `json:"simulated"`
	SentAt    time.Time `json:"sentAt"`
}

// Sender 渠道发送接口
// 当前全部是模拟实现，真实协议对接在各渠道服务商侧完成
type Sender interface {
	Channel() string
	Send(ctx context.Context, msg *Message) (*SendResult, error)
}

// Dispatcher 按渠道名分发消息
type Dispatcher struct {
	senders map[string]Sender
}

// NewDispatcher 创建分发器并注册全部内置渠道
func NewDispatcher() *Dispatcher {
	dispatcher := &Dispatcher{senders: map[string]Sender{}}
	for _, name := range []string{
		"whatsapp", "email", "phone", "linkedin",
		"instagram", "facebook", "twitter", "telegram",
	} {
		dispatcher.senders[name] = &stubSender{channel: name}
	}
	return dispatcher
}

// Send 在指定渠道发送消息
func (d *Dispatcher) Send(ctx context.Context, channelName string, msg *Message) (*SendResult, error) {
	sender, ok := d.senders[channelName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channelName)
	}
	return sender.Send(ctx, msg)
}

// Channels 返回支持的渠道列表
func (d *Dispatcher) Channels() []string {
	channels := make([]string, 0, len(d.senders))
	for name := range d.senders {
		channels = append(channels, name)
	}
	return channels
}

// stubSender 模拟发送器：只记录日志，不做真实投递
type stubSender struct {
	channel string
}

func (s *stubSender) Channel() string {
	return s.channel
}

func (s *stubSender) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if msg.To == "" || msg.Content == "" {
		return nil, errors.New("channel: recipient and content are required")
	}

	now := time.Now().UTC()
	result := &SendResult{
		Channel:   s.channel,
		MessageID: fmt.Sprintf("sim-%s-%d", s.channel, now.UnixNano()),
		Simulated: true,
		SentAt:    now,
	}

	logger.Info("模拟消息发送",
		zap.String("channel", s.channel),
		zap.String("to", msg.To),
		zap.String("message_id", result.MessageID),
	)
	return result, nil
}
