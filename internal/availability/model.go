package availability

// Availability is one recurring weekly window during which a provider
// accepts bookings. Times are "15:04" clock strings in the service timezone.
type Availability struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	ProviderID  string `bson:"provider_id" json:"provider_id"`
	DayOfWeek   string `bson:"day_of_week" json:"day_of_week"`
	StartTime   string `bson:"start_time" json:"start_time"`
	EndTime     string `bson:"end_time" json:"end_time"`
	IsAvailable bool   `bson:"is_available" json:"is_available"`
}

type CreateRequest struct {
	DayOfWeek   string `json:"day_of_week" validate:"required,weekday"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	IsAvailable *bool  `json:"is_available"`
}

// DaySchedule groups a day's windows; days without windows are omitted from
// ByDay output entirely.
type DaySchedule struct {
	Day   string         `json:"day"`
	Slots []Availability `json:"slots"`
}
