package services

import (
	"context"

	"finboard/internal/core"
	"finboard/internal/log"
)

// AlertSender delivers one budget alert. Implementations report failure
// through the return value and never panic or block the caller for long.
type AlertSender interface {
	SendBudgetAlert(ctx context.Context, to string, alert core.BudgetAlert) bool
}

// Notifier emails the user about budgets that a new expense pushed, or
// kept, over their allocation.
type Notifier struct {
	sender AlertSender
}

func NewNotifier(sender AlertSender) *Notifier {
	return &Notifier{sender: sender}
}

// NotifyOverages patches snapshot with the just-posted expense and sends an
// alert for every entry that is over budget afterwards. It returns the
// category names for which a send was attempted. Repeated calls in the
// same month alert again: there is no de-duplication.
func (n *Notifier) NotifyOverages(ctx context.Context, user core.User, snapshot []core.BudgetProgress, categoryID int64, amount core.Money) []string {
	logger := log.FromContext(ctx).WithComponent(log.ComponentNotify)
	core.PatchBudgetProgress(snapshot, categoryID, amount)

	attempted := []string{}
	if n == nil || n.sender == nil {
		return attempted
	}

	for _, p := range snapshot {
		if !p.IsOverBudget {
			continue
		}
		if user.Email == "" {
			logger.WarnContext(ctx, "Budget exceeded but user has no email address",
				log.FieldUserID, user.ID, log.FieldCategory, p.CategoryName)
			continue
		}

		attempted = append(attempted, p.CategoryName)
		if !n.sender.SendBudgetAlert(ctx, user.Email, p.Alert()) {
			logger.ErrorContext(ctx, "Budget alert was not delivered",
				log.FieldUserID, user.ID,
				log.FieldCategory, p.CategoryName,
				log.FieldOperation, log.OpNotify)
			continue
		}
		logger.InfoContext(ctx, "Budget alert sent",
			log.FieldUserID, user.ID,
			log.FieldCategory, p.CategoryName,
			"spent_cents", p.Spent.Cents,
			"budget_cents", p.Budget.Amount.Cents)
	}
	return attempted
}
