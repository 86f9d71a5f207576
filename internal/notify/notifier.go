package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nicholas-fedor/shoutrrr"

	"github.com/oshokin/gradual/internal/domain/alarm"
	"github.com/oshokin/gradual/internal/logger"
)

// Sender abstracts message dispatch so the notifier can be tested
// without hitting real services.
type Sender interface {
	Send(url, message string) error
}

// ShoutrrrSender dispatches via the shoutrrr library.
type ShoutrrrSender struct{}

// Send delivers message to the service behind url.
func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// errSendTimeout is reported when a sender does not return in time.
var errSendTimeout = errors.New("notification timed out")

// Notifier fans an "alarm played" message out to every configured URL.
type Notifier struct {
	// urls are the shoutrrr service URLs.
	urls []string
	// sender performs the delivery.
	sender Sender
	// timeout bounds each delivery; zero means no deadline.
	timeout time.Duration
}

// New creates a notifier. A nil sender means ShoutrrrSender.
func New(urls []string, sender Sender, timeout time.Duration) *Notifier {
	if sender == nil {
		sender = ShoutrrrSender{}
	}

	return &Notifier{
		urls:    urls,
		sender:  sender,
		timeout: timeout,
	}
}

// AlarmPlayed notifies every URL about a. Failures are logged only.
func (n *Notifier) AlarmPlayed(ctx context.Context, a *alarm.Alarm) {
	if n == nil || len(n.urls) == 0 {
		return
	}

	message := Message(a)

	for _, url := range n.urls {
		if err := n.send(ctx, url, message); err != nil {
			logger.WarnKV(ctx, "Notification failed", "alarm_id", a.ID, "error", err)
		}
	}
}

// Message renders the text sent for a played alarm.
func Message(a *alarm.Alarm) string {
	when := fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
	if a.Moment != "" {
		when = a.Moment
	}

	return fmt.Sprintf("Alarm %s played (%s on %s)", a.ID, when, a.Days)
}

// send runs one delivery, giving up once the timeout or ctx expires.
// Senders cannot be cancelled, so a late delivery finishes in the background.
func (n *Notifier) send(ctx context.Context, url, message string) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	done := make(chan error, 1)

	go func() {
		done <- n.sender.Send(url, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send notification: %w", err)
		}

		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errSendTimeout, ctx.Err())
	}
}
