package notificator

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/streamtip/donatio/internal/alert"
	"github.com/streamtip/donatio/internal/metrics"
	"github.com/streamtip/donatio/internal/models"
	"github.com/streamtip/donatio/pkg/logger"
)

// Notificator forwards shown alerts to every configured relay.
type Notificator struct {
	logger *logger.Logger
	relays []models.AlertRelay
}

func NewNotificator(logger *logger.Logger, relays ...models.AlertRelay) *Notificator {
	active := make([]models.AlertRelay, 0, len(relays))
	for _, r := range relays {
		if r != nil {
			active = append(active, r)
		}
	}
	return &Notificator{logger: logger, relays: active}
}

// Relays returns the names of the active relays.
func (n *Notificator) Relays() []string {
	names := make([]string, 0, len(n.relays))
	for _, r := range n.relays {
		names = append(names, r.Name())
	}
	return names
}

// Run consumes slot events until ctx is done or the channel closes.
func (n *Notificator) Run(ctx context.Context, events <-chan alert.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			metrics.AlertEvents.WithLabelValues(string(ev.Kind)).Inc()
			if ev.Kind == alert.EventShown {
				notification := ev.Notification
				n.SendNotification(&notification)
			}
		}
	}
}

// SendNotification relays the notification synchronously; a failing or
// panicking relay does not stop the others.
func (n *Notificator) SendNotification(notification *models.DonationNotification) {
	for _, relay := range n.relays {
		relay := relay
		n.safeCall(func() {
			if err := relay.Relay(notification); err != nil {
				metrics.RelayFailures.WithLabelValues(relay.Name()).Inc()
				n.logger.Error("Failed to relay notification", "relay", relay.Name(), "notification", notification.ID, "error", err)
				return
			}
			n.logger.Debug("Notification relayed", "relay", relay.Name(), "notification", notification.ID)
		}, relay.Name())
	}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RelayFailures.WithLabelValues(context).Inc()
			n.logger.Error("Function panicked",
				"context", context,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
