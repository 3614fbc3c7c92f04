// Package identity resolves an authenticated account to its role profiles.
// Role checks happen here exactly once per request instead of being repeated
// as existence queries at every call site.
package identity

import (
	"context"
	"errors"

	"github.com/sheisgracious/mindwell/internal/patients"
	"github.com/sheisgracious/mindwell/internal/providers"
	"go.mongodb.org/mongo-driver/mongo"
)

// Identity is the resolved role context for one account: each profile pointer
// is nil when the account has no profile for that role.
type Identity struct {
	AccountID string
	Provider  *providers.Provider
	Patient   *patients.Patient
}

func (id Identity) IsProvider() bool {
	return id.Provider != nil
}

func (id Identity) IsPatient() bool {
	return id.Patient != nil
}

// ProviderID returns the provider profile id, or "" when the account has none.
func (id Identity) ProviderID() string {
	if id.Provider == nil {
		return ""
	}
	return id.Provider.ID
}

// PatientID returns the patient profile id, or "" when the account has none.
func (id Identity) PatientID() string {
	if id.Patient == nil {
		return ""
	}
	return id.Patient.ID
}

type Resolver struct {
	providers providers.Repository
	patients  patients.Repository
}

func NewResolver(providerRepo providers.Repository, patientRepo patients.Repository) *Resolver {
	return &Resolver{
		providers: providerRepo,
		patients:  patientRepo,
	}
}

func (r *Resolver) Resolve(ctx context.Context, accountID string) (Identity, error) {
	id := Identity{AccountID: accountID}

	provider, err := r.providers.FindByUser(ctx, accountID)
	switch {
	case err == nil:
		id.Provider = &provider
	case !errors.Is(err, mongo.ErrNoDocuments):
		return Identity{}, err
	}

	patient, err := r.patients.FindByUser(ctx, accountID)
	switch {
	case err == nil:
		id.Patient = &patient
	case !errors.Is(err, mongo.ErrNoDocuments):
		return Identity{}, err
	}

	return id, nil
}
