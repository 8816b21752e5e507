package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire and storage format of due dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, NewValidationError("invalid due date %q, expected YYYY-MM-DD", raw)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return NewValidationError("due date must be a string")
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
