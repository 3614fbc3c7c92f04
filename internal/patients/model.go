package patients

import "time"

type Patient struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	UserID                string    `bson:"user_id" json:"-"`
	FirstName             string    `bson:"first_name" json:"first_name"`
	LastName              string    `bson:"last_name" json:"last_name"`
	Email                 string    `bson:"email,omitempty" json:"email,omitempty"`
	DOB                   string    `bson:"dob,omitempty" json:"dob,omitempty"`
	Gender                string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Address               string    `bson:"address,omitempty" json:"address,omitempty"`
	EmergencyContactName  string    `bson:"emergency_contact_name,omitempty" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string    `bson:"emergency_contact_phone,omitempty" json:"emergency_contact_phone,omitempty"`
	InsuranceProvider     string    `bson:"insurance_provider,omitempty" json:"insurance_provider,omitempty"`
	InsuranceID           string    `bson:"insurance_id,omitempty" json:"insurance_id,omitempty"`
	TherapyDescription    string    `bson:"therapy_description,omitempty" json:"therapy_description,omitempty"`
	JoinDate              time.Time `bson:"join_date" json:"join_date"`
}

type UpsertRequest struct {
	FirstName             string `json:"first_name" validate:"required"`
	LastName              string `json:"last_name" validate:"required"`
	Email                 string `json:"email" validate:"omitempty,email"`
	DOB                   string `json:"dob" validate:"omitempty,date"`
	Gender                string `json:"gender" validate:"omitempty,oneof=male female other"`
	Address               string `json:"address"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"omitempty,phone"`
	InsuranceProvider     string `json:"insurance_provider"`
	InsuranceID           string `json:"insurance_id"`
	TherapyDescription    string `json:"therapy_description"`
}
