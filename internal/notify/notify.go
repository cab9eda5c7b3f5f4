// Package notify hands one-time passcodes to the delivery channels.
//
// The API side publishes a Notification through a Notifier. The worker
// consumes it and delivers it through a Dispatcher.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"socialapp/internal/logger"
)

// Kind names the message template.
type Kind string

const (
	KindActivation    Kind = "activation"
	KindPasswordReset Kind = "password_reset"
)

// ErrPermanent marks a failure that a retry cannot fix.
var ErrPermanent = errors.New("permanent notification failure")

// Notification is the queued message.
type Notification struct {
	Kind  Kind   `json:"kind"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Code  string `json:"code"`
}

// Subject returns the email subject for the notification kind.
func (n Notification) Subject() string {
	switch n.Kind {
	case KindPasswordReset:
		return "Your password reset code"
	default:
		return "Activate your account"
	}
}

// Body returns the plain-text email body.
func (n Notification) Body() string {
	return fmt.Sprintf("Your verification code is %s", n.Code)
}

// Decode parses a queued notification. Malformed payloads are permanent
// failures.
func Decode(body []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	if n.Email == "" || n.Code == "" {
		return Notification{}, fmt.Errorf("%w: email and code are required", ErrPermanent)
	}
	return n, nil
}

// Notifier accepts notifications for delivery.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Publisher is the queue side of the rabbitmq client.
type Publisher interface {
	PublishJSON(ctx context.Context, payload interface{}) error
}

// QueueNotifier publishes notifications for the worker.
type QueueNotifier struct {
	pub Publisher
}

func NewQueueNotifier(pub Publisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (q *QueueNotifier) Notify(ctx context.Context, n Notification) error {
	if err := q.pub.PublishJSON(ctx, n); err != nil {
		return fmt.Errorf("failed to queue %s notification: %w", n.Kind, err)
	}
	return nil
}

// LogNotifier only logs. It is used when no broker is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notify")}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.log.Info("notification not delivered, no broker configured", "kind", n.Kind, "email", n.Email)
	return nil
}
