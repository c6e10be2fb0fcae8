package transport

import (
	"context"
	"encoding/json"

	"github.com/fixmarket/backend/internal/application/notify"
	"go.uber.org/zap"
)

// LogNotifier writes deliveries to the log. It is the default transport
// when no webhook URL is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("delivery")}
}

// Notify logs the notification
func (l *LogNotifier) Notify(ctx context.Context, n notify.Notification) error {
	l.logger.Info("notification",
		zap.String("participant_id", n.ParticipantID),
		zap.String("message", n.Message),
		zap.Int("actions", len(n.Actions)),
	)
	return nil
}

// RelayRaw logs the relay forwarding
func (l *LogNotifier) RelayRaw(ctx context.Context, fromID, toID string, payload json.RawMessage) error {
	l.logger.Info("relay",
		zap.String("from_id", fromID),
		zap.String("to_id", toID),
		zap.Int("payload_bytes", len(payload)),
	)
	return nil
}

var _ notify.Transport = (*LogNotifier)(nil)
