package providers

import "time"

type Provider struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	UserID          string    `bson:"user_id" json:"-"`
	FirstName       string    `bson:"first_name" json:"first_name"`
	LastName        string    `bson:"last_name" json:"last_name"`
	Email           string    `bson:"email,omitempty" json:"email,omitempty"`
	Gender          string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Occupation      string    `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Address         string    `bson:"address,omitempty" json:"address,omitempty"`
	Specialization  string    `bson:"specialization" json:"specialization"`
	ExperienceYears int       `bson:"experience_years" json:"experience_years"`
	Languages       string    `bson:"languages,omitempty" json:"languages,omitempty"`
	Bio             string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Verified        bool      `bson:"verified" json:"verified"`
	JoinDate        time.Time `bson:"join_date" json:"join_date"`
}

type UpsertRequest struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	Occupation      string `json:"occupation"`
	Address         string `json:"address"`
	Specialization  string `json:"specialization" validate:"required"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0"`
	Languages       string `json:"languages"`
	Bio             string `json:"bio"`
}

type ListFilter struct {
	Specialization string
	Language       string
	Search         string
}
