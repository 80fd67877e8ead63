package domain

import (
	"encoding/json"
	"time"
)

// ActivityAction tags the event an audit record describes.
type ActivityAction string

const (
	ActionTaskScheduled ActivityAction = "TASK_SCHEDULED"
	ActionTaskCheckedIn ActivityAction = "TASK_CHECKED_IN"
	ActionTaskCompleted ActivityAction = "TASK_COMPLETED"
	ActionTaskHeld      ActivityAction = "TASK_HELD"
	ActionTaskResumed   ActivityAction = "TASK_RESUMED"

	ActionAccountDeletionInitiated      ActivityAction = "ACCOUNT_DELETION_INITIATED"
	ActionAccountDeletionCompleted      ActivityAction = "ACCOUNT_DELETION_COMPLETED"
	ActionAccountDeletionFailed         ActivityAction = "ACCOUNT_DELETION_FAILED"
	ActionAccountDeletionAlreadyDeleted ActivityAction = "ACCOUNT_DELETION_ALREADY_DELETED"
)

// Activity is an append-only audit record. UserID is a weak reference to
// the identity provider and is preserved forever, even after the account
// it names has been deleted.
type Activity struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Topic     string          `json:"topic"`
	Action    ActivityAction  `json:"action"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Audit topics.
const (
	TopicTask    = "task"
	TopicAccount = "account"
)
