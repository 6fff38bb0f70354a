package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mysociety/internal/common"
)

// Date is a calendar date without a time component, held at midnight UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD. A full RFC 3339 timestamp is also accepted
// and truncated to its date, matching what spreadsheet tools tend to write.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(common.DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(common.DateLayout)
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	return d.Time.Compare(o.Time)
}

// Within reports whether d lies in [from, to]; nil bounds are open.
func (d Date) Within(from, to *Date) bool {
	if from != nil && d.Compare(*from) < 0 {
		return false
	}
	if to != nil && d.Compare(*to) > 0 {
		return false
	}
	return true
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
