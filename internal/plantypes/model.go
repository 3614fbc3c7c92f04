package plantypes

import "time"

// PlanType is a catalog entry. BaseCost is in cents; plans copy it at
// creation so later catalog edits do not reprice existing plans.
type PlanType struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	BaseCost    int64     `bson:"base_cost" json:"base_cost"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	ProviderIDs []string  `bson:"provider_ids" json:"provider_ids"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type UpsertRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	BaseCost    int64    `json:"base_cost" validate:"gte=0"`
	IsActive    *bool    `json:"is_active"`
	ProviderIDs []string `json:"provider_ids"`
}

// Supports reports whether the provider is in this type's supporting set.
func (p PlanType) Supports(providerID string) bool {
	for _, id := range p.ProviderIDs {
		if id == providerID {
			return true
		}
	}
	return false
}
