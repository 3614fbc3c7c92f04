package patients

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound      = errors.New("patient not found")
	ErrAlreadyExists = errors.New("account already has a patient profile")
)

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req UpsertRequest) (Patient, error) {
	patient := Patient{
		ID:                    primitive.NewObjectID().Hex(),
		UserID:                userID,
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Email:                 strings.TrimSpace(req.Email),
		DOB:                   req.DOB,
		Gender:                req.Gender,
		Address:               strings.TrimSpace(req.Address),
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
		InsuranceProvider:     strings.TrimSpace(req.InsuranceProvider),
		InsuranceID:           strings.TrimSpace(req.InsuranceID),
		TherapyDescription:    strings.TrimSpace(req.TherapyDescription),
		JoinDate:              time.Now().In(s.location),
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Patient{}, ErrAlreadyExists
		}
		return Patient{}, err
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Patient, error) {
	set := bson.M{
		"first_name":              strings.TrimSpace(req.FirstName),
		"last_name":               strings.TrimSpace(req.LastName),
		"email":                   strings.TrimSpace(req.Email),
		"dob":                     req.DOB,
		"gender":                  req.Gender,
		"address":                 strings.TrimSpace(req.Address),
		"emergency_contact_name":  strings.TrimSpace(req.EmergencyContactName),
		"emergency_contact_phone": strings.TrimSpace(req.EmergencyContactPhone),
		"insurance_provider":      strings.TrimSpace(req.InsuranceProvider),
		"insurance_id":            strings.TrimSpace(req.InsuranceID),
		"therapy_description":     strings.TrimSpace(req.TherapyDescription),
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Patient, error) {
	patient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return patient, nil
}

// GetByUser looks a patient up by owning account.
func (s *Service) GetByUser(ctx context.Context, userID string) (Patient, error) {
	patient, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return patient, nil
}
