package plans

import "time"

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// TherapyPlan ties one patient to one provider under a plan type. Cost is
// copied from the plan type at creation and does not track later catalog
// edits.
type TherapyPlan struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	PatientID  string    `bson:"patient_id" json:"patient_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	PlanTypeID string    `bson:"plan_type_id" json:"plan_type_id"`
	Status     string    `bson:"status" json:"status"`
	StartDate  string    `bson:"start_date,omitempty" json:"start_date,omitempty"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Cost       int64     `bson:"cost" json:"cost"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

func (p TherapyPlan) IsParty(providerID, patientID string) bool {
	if providerID != "" && p.ProviderID == providerID {
		return true
	}
	if patientID != "" && p.PatientID == patientID {
		return true
	}
	return false
}

type CreateRequest struct {
	ProviderID string `json:"provider_id" validate:"required"`
	PlanTypeID string `json:"plan_type_id" validate:"required"`
	StartDate  string `json:"start_date" validate:"omitempty,date"`
	Notes      string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active paused completed cancelled"`
}

type ListFilter struct {
	Status string
}
