package transport

type MoneyPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type TaskRequest struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	CustomerID      string        `json:"customer_id"`
	LocationID      string        `json:"location_id"`
	AssigneeIDs     []string      `json:"assignee_ids"`
	ExpectedRevenue *MoneyPayload `json:"expected_revenue"`
	ScheduledAt     string        `json:"scheduled_at"`
}

type HoldRequest struct {
	Reason string `json:"reason"`
}

// CheckRequest carries the reported device position for a check-in or
// check-out; the optional payment only applies to check-out.
type CheckRequest struct {
	Lat     float64         `json:"lat"`
	Lng     float64         `json:"lng"`
	Payment *PaymentRequest `json:"payment"`
}

type PaymentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Note     string `json:"note"`
}

type LocationRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
