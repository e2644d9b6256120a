package notify

import (
	"context"

	"go.uber.org/zap"

	"glarm/pkg/logger"
)

// Provider delivers a fired notification to the user's device.
type Provider interface {
	Deliver(ctx context.Context, req Request) error
}

// LogProvider writes fired notifications to the application log. It is the
// default for deployments without a push gateway.
type LogProvider struct{}

func (LogProvider) Deliver(_ context.Context, req Request) error {
	logger.Info("notification fired",
		zap.String("id", req.ID),
		zap.String("title", req.Payload.Title),
		zap.String("body", req.Payload.Body),
		zap.String("sound", req.Payload.Sound),
	)
	return nil
}

// PushConfig holds credentials for an external push gateway.
type PushConfig struct {
	AppKey       string
	MasterSecret string
}

// PushClient is the transport the push provider delegates to.
type PushClient interface {
	Push(ctx context.Context, title, content string, extras map[string]interface{}) error
}

// PushProvider forwards fired notifications to a push gateway.
type PushProvider struct {
	cfg PushConfig
	cli PushClient
}

func NewPushProvider(cfg PushConfig, cli PushClient) *PushProvider {
	return &PushProvider{cfg: cfg, cli: cli}
}

func (p *PushProvider) Deliver(ctx context.Context, req Request) error {
	if p.cli == nil {
		return context.Canceled // no client configured
	}
	extras := map[string]interface{}{
		"alarmId": req.ID,
		"sound":   req.Payload.Sound,
	}
	return p.cli.Push(ctx, req.Payload.Title, req.Payload.Body, extras)
}
