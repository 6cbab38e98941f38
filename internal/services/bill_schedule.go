package services

import (
	"fmt"
	"time"

	"finboard/internal/core"
)

// BillSchedule is the strategy that computes when a recurring bill falls
// due again. Each frequency has its own implementation.
type BillSchedule interface {
	// Next returns the due date following due, or false when the bill
	// does not repeat.
	Next(due core.Date) (core.Date, bool)
}

// MonthlySchedule keeps the day of month, clamped to the month's last day.
type MonthlySchedule struct{}

func (MonthlySchedule) Next(due core.Date) (core.Date, bool) {
	return addMonthsClamped(due, 1), true
}

// WeeklySchedule adds seven days.
type WeeklySchedule struct{}

func (WeeklySchedule) Next(due core.Date) (core.Date, bool) {
	return due.AddDays(7), true
}

// YearlySchedule keeps month and day; Feb 29 becomes Feb 28 in common years.
type YearlySchedule struct{}

func (YearlySchedule) Next(due core.Date) (core.Date, bool) {
	return addMonthsClamped(due, 12), true
}

// OneTimeSchedule never repeats.
type OneTimeSchedule struct{}

func (OneTimeSchedule) Next(core.Date) (core.Date, bool) {
	return core.Date{}, false
}

func addMonthsClamped(d core.Date, months int) core.Date {
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return core.NewDate(first.Year(), int(first.Month()), day)
}

// billSchedules maps frequencies to their strategies.
var billSchedules = map[core.BillFrequency]BillSchedule{
	core.Monthly: MonthlySchedule{},
	core.Weekly:  WeeklySchedule{},
	core.Yearly:  YearlySchedule{},
	core.OneTime: OneTimeSchedule{},
}

// GetBillSchedule returns the schedule for a frequency.
func GetBillSchedule(frequency core.BillFrequency) (BillSchedule, error) {
	s, ok := billSchedules[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return s, nil
}

// NextDueDate is a shorthand for GetBillSchedule(frequency).Next(due).
func NextDueDate(frequency core.BillFrequency, due core.Date) (core.Date, bool, error) {
	s, err := GetBillSchedule(frequency)
	if err != nil {
		return core.Date{}, false, err
	}
	next, ok := s.Next(due)
	return next, ok, nil
}
