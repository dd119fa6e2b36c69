// README: No-op notifier used when the broker is unreachable or in tests.
package notify

import (
	"context"
	"log/slog"

	"quickcart/internal/types"
)

type NoopNotifier struct {
	log *slog.Logger
}

func NewNoopNotifier(log *slog.Logger) *NoopNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &NoopNotifier{log: log}
}

func (n *NoopNotifier) Offer(ctx context.Context, recipients []types.ID, offer Offer) error {
	n.log.Info("offer dropped (no notifier)", "order_id", offer.OrderID, "recipients", len(recipients))
	return nil
}

func (n *NoopNotifier) Cancel(ctx context.Context, recipients []types.ID, orderID types.ID, reason string) error {
	n.log.Info("cancel dropped (no notifier)", "order_id", orderID, "recipients", len(recipients))
	return nil
}
