package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"finboard/internal/core"
)

// The two drivers disagree on how dates come back: modernc returns the
// stored TEXT, pgx returns time.Time. These scanners accept both.

type dateCol struct{ d *core.Date }

func (c dateCol) Scan(src any) error {
	t, err := parseTimeValue(src, core.DateLayout)
	if err != nil {
		return err
	}
	*c.d = core.DateOf(t)
	return nil
}

type nullDateCol struct{ d **core.Date }

func (c nullDateCol) Scan(src any) error {
	if src == nil {
		*c.d = nil
		return nil
	}
	t, err := parseTimeValue(src, core.DateLayout)
	if err != nil {
		return err
	}
	d := core.DateOf(t)
	*c.d = &d
	return nil
}

type timeCol struct{ t *time.Time }

func (c timeCol) Scan(src any) error {
	if src == nil {
		*c.t = time.Time{}
		return nil
	}
	t, err := parseTimeValue(src, timestampLayout)
	if err != nil {
		return err
	}
	*c.t = t.UTC()
	return nil
}

type moneyCol struct{ m *core.Money }

func (c moneyCol) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		return err
	}
	c.m.Cents = n.Int64
	return nil
}

type nullIDCol struct{ id **int64 }

func (c nullIDCol) Scan(src any) error {
	var n sql.NullInt64
	if err := n.Scan(src); err != nil {
		return err
	}
	if !n.Valid {
		*c.id = nil
		return nil
	}
	v := n.Int64
	*c.id = &v
	return nil
}

var timeLayouts = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	core.DateLayout,
}

func parseTimeValue(src any, preferred string) (time.Time, error) {
	var s string
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, fmt.Errorf("unsupported time value %T", src)
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(preferred, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

// nullableID converts an optional foreign key into a driver argument.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableDate(d *core.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
