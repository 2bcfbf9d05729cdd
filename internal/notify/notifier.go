package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier displays a local notification to the user
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Noop discards notifications. Used when notifications are disabled; the
// feature degrades silently rather than failing callers.
type Noop struct{}

func (Noop) Notify(_ context.Context, _, _ string) error {
	return nil
}

// LogNotifier renders notifications on the terminal through the logger
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by the given logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.logger.Info("notification",
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
