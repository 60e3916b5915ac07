package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PnlStatus represents the lifecycle status of an event P&L
type PnlStatus int

const (
	PnlStatusDraft    PnlStatus = 0
	PnlStatusInReview PnlStatus = 1
	PnlStatusApproved PnlStatus = 2
	PnlStatusRejected PnlStatus = 3
	PnlStatusArchived PnlStatus = 4
)

func (s PnlStatus) String() string {
	names := [...]string{"draft", "in_review", "approved", "rejected", "archived"}
	if int(s) < 0 || int(s) >= len(names) {
		return "draft"
	}
	return names[s]
}

// CanTransition reports whether moving from the current status to the
// target status is a legal lifecycle step. Approved and archived are
// terminal; rejected can only be archived.
func (s PnlStatus) CanTransition(to PnlStatus) bool {
	switch s {
	case PnlStatusDraft:
		return to == PnlStatusInReview || to == PnlStatusApproved ||
			to == PnlStatusRejected || to == PnlStatusArchived
	case PnlStatusInReview:
		return to == PnlStatusApproved || to == PnlStatusRejected ||
			to == PnlStatusArchived
	case PnlStatusRejected:
		return to == PnlStatusArchived
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible
func (s PnlStatus) IsTerminal() bool {
	return s == PnlStatusApproved || s == PnlStatusArchived
}

func (s PnlStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PnlStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PnlStatus(i)
		return nil
	}
	switch str {
	case "draft":
		*s = PnlStatusDraft
	case "in_review":
		*s = PnlStatusInReview
	case "approved":
		*s = PnlStatusApproved
	case "rejected":
		*s = PnlStatusRejected
	case "archived":
		*s = PnlStatusArchived
	}
	return nil
}

func (s PnlStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PnlStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PnlStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PnlStatus(v)
	case int:
		*s = PnlStatus(v)
	}
	return nil
}
