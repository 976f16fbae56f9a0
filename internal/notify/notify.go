// Package notify delivers fired alarms to the user.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/vadiminshakov/coinwatch/internal/domain"
)

// Notifier delivers one fired alarm.
type Notifier interface {
	Notify(ctx context.Context, fired domain.FiredAlarm) error
}

// Multi fans a fired alarm out to every notifier. Failures are logged and never stop delivery to the rest.
type Multi struct {
	logger    *zap.Logger
	notifiers []Notifier
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	return &Multi{logger: logger, notifiers: notifiers}
}

// Add appends a notifier.
func (m *Multi) Add(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

func (m *Multi) Notify(ctx context.Context, fired domain.FiredAlarm) error {
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, fired); err != nil {
			m.logger.Warn("alarm notification failed",
				zap.String("coin", fired.Rule.Coin.String()),
				zap.String("notifier", notifierName(n)),
				zap.Error(err))
		}
	}
	return nil
}

func notifierName(n Notifier) string {
	switch n.(type) {
	case *LogNotifier:
		return "log"
	case *SoundNotifier:
		return "sound"
	case *TelegramNotifier:
		return "telegram"
	default:
		return "custom"
	}
}

// LogNotifier writes fired alarms to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, fired domain.FiredAlarm) error {
	n.logger.Info("alarm fired",
		zap.String("coin", fired.Rule.Coin.String()),
		zap.String("type", fired.Rule.Kind.String()),
		zap.String("threshold", fired.Rule.Threshold.String()),
		zap.String("price", fired.Record.Price.String()),
		zap.String("change_24h", fired.Record.PercentChange24h.String()),
	)
	return nil
}
