package domain

import "time"

// TaskStatus enumerates the task lifecycle states.
type TaskStatus string

const (
	StatusPreparing  TaskStatus = "PREPARING"
	StatusReady      TaskStatus = "READY"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusOnHold     TaskStatus = "ON_HOLD"
	StatusCompleted  TaskStatus = "COMPLETED"
)

// Valid reports whether the value is a known lifecycle state.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPreparing, StatusReady, StatusInProgress, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Money carries an amount in minor units with an ISO currency code.
// VND has no minor units, so the amount there is the face value.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Task represents a field-service job assigned to one or more workers.
// Assignee IDs are identity-provider user ids held as weak references:
// the referenced account may no longer exist.
type Task struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Status          TaskStatus  `json:"status"`
	SuspendedFrom   *TaskStatus `json:"suspended_from,omitempty"`
	CustomerID      *string     `json:"customer_id,omitempty"`
	LocationID      *string     `json:"location_id,omitempty"`
	AssigneeIDs     []string    `json:"assignee_ids"`
	ExpectedRevenue *Money      `json:"expected_revenue,omitempty"`
	ScheduledAt     *time.Time  `json:"scheduled_at,omitempty"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// IsAssignee reports whether the given identity-provider user id is on
// the task's assignee list.
func (t *Task) IsAssignee(userID string) bool {
	if t == nil || userID == "" {
		return false
	}
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanTransition reports whether moving this task to the target status is
// a legal lifecycle edge. ON_HOLD may only resume to the state it was
// suspended from; COMPLETED is terminal.
func (t *Task) CanTransition(to TaskStatus) bool {
	if t == nil || !to.Valid() {
		return false
	}
	switch t.Status {
	case StatusPreparing:
		return to == StatusReady || to == StatusOnHold
	case StatusReady:
		return to == StatusInProgress || to == StatusOnHold
	case StatusInProgress:
		return to == StatusCompleted || to == StatusOnHold
	case StatusOnHold:
		return t.SuspendedFrom != nil && to == *t.SuspendedFrom
	case StatusCompleted:
		return false
	}
	return false
}
