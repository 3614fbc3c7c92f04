package booking

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"

	TypeMessage = "message"
	TypeAudio   = "audio"
	TypeVideo   = "video"

	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// terminalStatuses are end states a session cannot leave.
var terminalStatuses = map[string]bool{
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// Session is a single booked meeting on a therapy plan. Provider and patient
// ids are copied from the plan at creation so conflict and dashboard queries
// never need a join.
type Session struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	PlanID           string    `bson:"plan_id" json:"plan_id"`
	ProviderID       string    `bson:"provider_id" json:"provider_id"`
	PatientID        string    `bson:"patient_id" json:"patient_id"`
	SessionDate      string    `bson:"session_date" json:"session_date"`
	SessionTime      string    `bson:"session_time" json:"session_time"`
	DurationMinutes  int       `bson:"duration_minutes" json:"duration_minutes"`
	SessionType      string    `bson:"session_type" json:"session_type"`
	Status           string    `bson:"status" json:"status"`
	PaymentStatus    string    `bson:"payment_status" json:"payment_status"`
	Notes            string    `bson:"notes,omitempty" json:"notes,omitempty"`
	FollowUpRequired bool      `bson:"follow_up_required" json:"follow_up_required"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}

type CreateRequest struct {
	SessionDate     string `json:"session_date" validate:"required,date"`
	SessionTime     string `json:"session_time" validate:"required,clock"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=15,max=240"`
	SessionType     string `json:"session_type" validate:"omitempty,oneof=message audio video"`
	Notes           string `json:"notes"`
}

// UpdateRequest carries the fields a provider may change after the fact.
// Pointers distinguish "leave alone" from "set to zero value".
type UpdateRequest struct {
	Status           *string `json:"status" validate:"omitempty,oneof=scheduled completed cancelled no-show"`
	PaymentStatus    *string `json:"payment_status" validate:"omitempty,oneof=paid unpaid"`
	Notes            *string `json:"notes"`
	FollowUpRequired *bool   `json:"follow_up_required"`
}

// DaySlots is the bookable view of one provider day.
type DaySlots struct {
	ProviderID      string   `json:"provider_id"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Slots           []string `json:"slots"`
}
