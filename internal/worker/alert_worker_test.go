package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/core"
)

type fakeDeliverer struct {
	err  error
	sent []string
}

func (f *fakeDeliverer) Deliver(_ context.Context, to string, alert core.BudgetAlert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+":"+alert.CategoryName)
	return nil
}

func TestAlertWorker_HandleBudgetAlert(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	alert := core.BudgetAlert{
		CategoryName: "Food & Dining",
		Period:       core.MonthlyBudget,
		StartDate:    core.NewDate(2024, 3, 1),
		Spent:        core.Money{Cents: 12500},
		Amount:       core.Money{Cents: 10000},
	}

	tests := []struct {
		name      string
		age       time.Duration
		err       error
		wantErr   bool
		wantSent  int
		wantStats Stats
	}{
		{name: "fresh alert delivered", age: time.Minute, wantSent: 1, wantStats: Stats{Delivered: 1}},
		{name: "delivery failure requeues", age: time.Minute, err: errors.New("smtp down"), wantErr: true, wantStats: Stats{Failed: 1}},
		{name: "expired alert dropped", age: 48 * time.Hour, wantStats: Stats{Expired: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDeliverer{err: tt.err}
			w := NewAlertWorker(d).WithClock(func() time.Time { return now })

			msg := &amqp.BudgetAlertMessage{
				MessageID: "msg-1",
				To:        "jane@example.com",
				Alert:     alert,
				Timestamp: now.Add(-tt.age),
			}
			err := w.HandleBudgetAlert(context.Background(), msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleBudgetAlert() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.err) {
				t.Errorf("HandleBudgetAlert() error = %v, want wrapping %v", err, tt.err)
			}
			if len(d.sent) != tt.wantSent {
				t.Errorf("sent %d emails, want %d", len(d.sent), tt.wantSent)
			}
			if got := w.Stats(); got != tt.wantStats {
				t.Errorf("Stats() = %+v, want %+v", got, tt.wantStats)
			}
		})
	}
}

func TestAlertWorker_ZeroMaxAgeKeepsEverything(t *testing.T) {
	d := &fakeDeliverer{}
	w := NewAlertWorker(d).WithMaxAge(0)

	msg := &amqp.BudgetAlertMessage{MessageID: "old", To: "jane@example.com", Timestamp: time.Unix(0, 0)}
	if err := w.HandleBudgetAlert(context.Background(), msg); err != nil {
		t.Fatalf("HandleBudgetAlert() error = %v", err)
	}
	if len(d.sent) != 1 {
		t.Errorf("sent %d emails, want 1", len(d.sent))
	}
}
