package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/log"
)

// DefaultMaxAge is how long a queued alert stays worth sending.
const DefaultMaxAge = 24 * time.Hour

// Deliverer sends one alert and reports why it failed.
type Deliverer interface {
	Deliver(ctx context.Context, to string, alert core.BudgetAlert) error
}

// AlertWorker turns queued budget alert messages into emails.
type AlertWorker struct {
	deliverer Deliverer
	maxAge    time.Duration
	now       func() time.Time

	delivered atomic.Int64
	failed    atomic.Int64
	expired   atomic.Int64
}

func NewAlertWorker(d Deliverer) *AlertWorker {
	return &AlertWorker{deliverer: d, maxAge: DefaultMaxAge, now: time.Now}
}

// WithMaxAge overrides DefaultMaxAge. Zero keeps every message.
func (w *AlertWorker) WithMaxAge(d time.Duration) *AlertWorker {
	w.maxAge = d
	return w
}

func (w *AlertWorker) WithClock(now func() time.Time) *AlertWorker {
	w.now = now
	return w
}

// HandleBudgetAlert delivers one message. A returned error makes the consumer
// requeue the message; expired alerts are acknowledged without sending.
func (w *AlertWorker) HandleBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker).With(
		log.FieldMessageID, msg.MessageID,
		log.FieldCategory, msg.Alert.CategoryName)

	if age := w.now().Sub(msg.Timestamp); w.maxAge > 0 && age > w.maxAge {
		w.expired.Add(1)
		logger.WarnContext(ctx, "Dropping expired budget alert", "age", age.Round(time.Second).String())
		return nil
	}

	if err := w.deliverer.Deliver(ctx, msg.To, msg.Alert); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("deliver budget alert %s: %w", msg.MessageID, err)
	}

	w.delivered.Add(1)
	logger.InfoContext(ctx, "Budget alert delivered", "spent_cents", msg.Alert.Spent.Cents)
	return nil
}

// Stats are running totals since the worker started.
type Stats struct {
	Delivered int64
	Failed    int64
	Expired   int64
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Delivered: w.delivered.Load(),
		Failed:    w.failed.Load(),
		Expired:   w.expired.Load(),
	}
}
