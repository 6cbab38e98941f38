// Package mail delivers budget alert emails. Mailers know how to send a
// plain-text message; AlertSender turns a budget overage into one.
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
	"finboard/internal/log"
)

// DefaultSendTimeout bounds a single delivery attempt.
const DefaultSendTimeout = 15 * time.Second

// Mailer sends one plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AlertSubject is the subject line of a budget alert email.
func AlertSubject(a core.BudgetAlert) string {
	return fmt.Sprintf("Budget alert: %s is over budget", a.CategoryName)
}

// AlertBody renders the budget alert email.
func AlertBody(a core.BudgetAlert) string {
	over := a.Spent.Sub(a.Amount)
	var b strings.Builder
	fmt.Fprintf(&b, "You have exceeded your %s budget for %s.\n\n", a.Period, a.CategoryName)
	fmt.Fprintf(&b, "Budget:   $%s\n", a.Amount)
	fmt.Fprintf(&b, "Spent:    $%s (%.1f%%)\n", a.Spent, core.Percent(a.Spent, a.Amount))
	fmt.Fprintf(&b, "Over by:  $%s\n", over)
	fmt.Fprintf(&b, "Budget started on %s.\n\n", a.StartDate)
	b.WriteString("Review your recent transactions to get back on track.\n")
	return b.String()
}

// AlertSender adapts a Mailer to the notification trigger. Each send gets
// its own timeout and failures are reported as false.
type AlertSender struct {
	mailer  Mailer
	timeout time.Duration
}

func NewAlertSender(m Mailer) *AlertSender {
	return &AlertSender{mailer: m, timeout: DefaultSendTimeout}
}

func (s *AlertSender) SendBudgetAlert(ctx context.Context, to string, alert core.BudgetAlert) bool {
	return s.Deliver(ctx, to, alert) == nil
}

// Deliver sends the alert and returns the mailer's error. The alert worker
// uses it to decide whether a message is requeued.
func (s *AlertSender) Deliver(ctx context.Context, to string, alert core.BudgetAlert) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.mailer.Send(ctx, to, AlertSubject(alert), AlertBody(alert)); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentMail).ErrorContext(ctx, "Failed to send budget alert email",
			log.FieldError, err, log.FieldCategory, alert.CategoryName)
		return fmt.Errorf("send budget alert to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger.WithComponent(log.ComponentMail)}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.InfoContext(ctx, "Email (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}
