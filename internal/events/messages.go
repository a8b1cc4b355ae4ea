package events

import (
	"encoding/json"
	"time"
)

// Actions carried by expense events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEvent is a lightweight change notification published after a
// confirmed write. Consumers needing the full record fetch it themselves;
// the event only identifies what changed.
type ExpenseEvent struct {
	Action    string    `json:"action"`
	ExpenseID string    `json:"expense_id"`
	Owner     string    `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(action, expenseID, owner string) *ExpenseEvent {
	return &ExpenseEvent{
		Action:    action,
		ExpenseID: expenseID,
		Owner:     owner,
		Timestamp: time.Now(),
	}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var e ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
