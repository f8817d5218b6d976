// Package messaging delivers customer notifications. Delivery is best
// effort: callers enqueue after their transaction commits and never see
// send errors.
package messaging

import (
	"context"

	"go.uber.org/zap"
)

const KindRedemptionCode = "redemption_code"

type Message struct {
	Kind string
	To   string
	Body string

	// Correlation fields, logged only.
	SalonID       uint
	ReservationID uint
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of sending them. It is
// used when no SMS provider is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("notification",
		zap.String("kind", msg.Kind),
		zap.String("to", mask(msg.To)),
		zap.Uint("salon_id", msg.SalonID),
		zap.Uint("reservation_id", msg.ReservationID),
	)
	return nil
}

// mask keeps the last four characters of a phone number.
func mask(to string) string {
	if len(to) <= 4 {
		return to
	}
	b := []byte(to)
	for i := 0; i < len(b)-4; i++ {
		b[i] = '*'
	}
	return string(b)
}
