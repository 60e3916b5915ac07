package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// EventStatus represents the planning status of an event
type EventStatus int

const (
	EventStatusPlanned   EventStatus = 0
	EventStatusConfirmed EventStatus = 1
	EventStatusCancelled EventStatus = 2
)

func (s EventStatus) String() string {
	names := [...]string{"planned", "confirmed", "cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "planned"
	}
	return names[s]
}

func (s EventStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *EventStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = EventStatus(i)
		return nil
	}
	switch str {
	case "planned":
		*s = EventStatusPlanned
	case "confirmed":
		*s = EventStatusConfirmed
	case "cancelled":
		*s = EventStatusCancelled
	}
	return nil
}

func (s EventStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *EventStatus) Scan(value interface{}) error {
	if value == nil {
		*s = EventStatusPlanned
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = EventStatus(v)
	case int:
		*s = EventStatus(v)
	}
	return nil
}
