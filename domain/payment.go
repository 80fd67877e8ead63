package domain

import "time"

// Payment records money collected against a task. CollectedBy is a weak
// identity reference; the row is retained after the collector's account
// is deleted.
type Payment struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	CollectedBy string    `json:"collected_by"`
	CollectedAt time.Time `json:"collected_at"`
	Note        string    `json:"note,omitempty"`
}
