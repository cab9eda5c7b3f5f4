package notify

import (
	"context"
	"errors"
	"fmt"

	"socialapp/internal/logger"
)

// Dispatcher delivers consumed notifications. Email is mandatory, SMS is
// sent as well when a sender is configured and the notification has a phone.
type Dispatcher struct {
	mailer Mailer
	sms    SMSSender
	log    *logger.Logger
}

// NewDispatcher creates a Dispatcher. sms may be nil.
func NewDispatcher(mailer Mailer, sms SMSSender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, sms: sms, log: log.With("component", "dispatcher")}
}

// Deliver sends n over every configured channel.
func (d *Dispatcher) Deliver(ctx context.Context, n Notification) error {
	if err := d.mailer.SendEmail(ctx, n.Email, n.Subject(), n.Body()); err != nil {
		return classify(fmt.Errorf("email to %s: %w", n.Email, err))
	}
	if d.sms != nil && n.Phone != "" {
		// the email already went out, so an SMS failure is only logged
		if err := d.sms.SendCode(ctx, n.Phone, n.Code); err != nil {
			d.log.Warn("sms delivery failed", "kind", n.Kind, "error", err)
		}
	}
	d.log.Info("notification delivered", "kind", n.Kind, "email", n.Email)
	return nil
}

// Handle decodes a queued payload and delivers it.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	n, err := Decode(body)
	if err != nil {
		return err
	}
	return d.Deliver(ctx, n)
}

// Retryable reports whether a failed delivery should go back on the queue.
func Retryable(err error) bool {
	return !errors.Is(err, ErrPermanent)
}

func classify(err error) error {
	var he *HTTPError
	if errors.As(err, &he) && he.Permanent() {
		return fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	return err
}
