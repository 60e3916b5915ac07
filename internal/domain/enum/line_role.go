package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LineRole tags a revenue line with its function in the P&L. The scenario
// applier targets the ticket line by role instead of matching on the
// free-text category, so renaming a category never breaks what-if runs.
type LineRole int

const (
	LineRoleOther  LineRole = 0
	LineRoleTicket LineRole = 1
)

func (r LineRole) String() string {
	names := [...]string{"other", "ticket"}
	if int(r) < 0 || int(r) >= len(names) {
		return "other"
	}
	return names[r]
}

func (r LineRole) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *LineRole) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*r = LineRole(i)
		return nil
	}
	switch str {
	case "other":
		*r = LineRoleOther
	case "ticket":
		*r = LineRoleTicket
	}
	return nil
}

func (r LineRole) Value() (driver.Value, error) {
	return int64(r), nil
}

func (r *LineRole) Scan(value interface{}) error {
	if value == nil {
		*r = LineRoleOther
		return nil
	}
	switch v := value.(type) {
	case int64:
		*r = LineRole(v)
	case int:
		*r = LineRole(v)
	}
	return nil
}
