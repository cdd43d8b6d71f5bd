package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogGateway writes messages to the application log instead of
// delivering them. Used in development when no SMTP relay is
// configured, matching the behavior of running with real sending
// disabled.
type LogGateway struct {
	log *zap.Logger
}

var _ Gateway = (*LogGateway)(nil)

func NewLogGateway(log *zap.Logger) *LogGateway {
	return &LogGateway{log: log}
}

func (g *LogGateway) Send(ctx context.Context, dest Destination, message string) error {
	g.log.Info("notification (log-only gateway)",
		zap.String("channel", string(dest.Channel)),
		zap.String("address", dest.Address),
		zap.String("message", message),
	)
	return nil
}
