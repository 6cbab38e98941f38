package amqp

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/log"
)

// AlertPublisher hands budget alerts to the broker instead of sending mail
// in the request path. The alert worker consumes them.
type AlertPublisher struct {
	client interface {
		PublishBudgetAlert(ctx context.Context, msg *BudgetAlertMessage) error
	}
}

func NewAlertPublisher(client *Client) *AlertPublisher {
	return &AlertPublisher{client: client}
}

// SendBudgetAlert reports whether the alert was accepted by the broker.
func (p *AlertPublisher) SendBudgetAlert(ctx context.Context, to string, alert core.BudgetAlert) bool {
	msg := NewBudgetAlertMessage(to, alert)
	if err := p.client.PublishBudgetAlert(ctx, msg); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to queue budget alert",
			log.FieldError, err, log.FieldMessageID, msg.MessageID, log.FieldCategory, alert.CategoryName)
		return false
	}
	return true
}
