package providers

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
	ErrNotFound      = errors.New("provider not found")
	ErrAlreadyExists = errors.New("account already has a provider profile")
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

// Create registers a provider profile for the given account. The unique
// user_id index guarantees at most one provider per account.
func (s *Service) Create(ctx context.Context, userID string, req UpsertRequest) (Provider, error) {
	provider := Provider{
		ID:              primitive.NewObjectID().Hex(),
		UserID:          userID,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		Gender:          req.Gender,
		Occupation:      strings.TrimSpace(req.Occupation),
		Address:         strings.TrimSpace(req.Address),
		Specialization:  strings.TrimSpace(req.Specialization),
		ExperienceYears: req.ExperienceYears,
		Languages:       strings.TrimSpace(req.Languages),
		Bio:             strings.TrimSpace(req.Bio),
		Verified:        true,
		JoinDate:        time.Now().In(s.location),
	}

	if err := s.repo.Create(ctx, provider); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Provider{}, ErrAlreadyExists
		}
		return Provider{}, err
	}
	return provider, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (Provider, error) {
	set := bson.M{
		"first_name":       strings.TrimSpace(req.FirstName),
		"last_name":        strings.TrimSpace(req.LastName),
		"email":            strings.TrimSpace(req.Email),
		"gender":           req.Gender,
		"occupation":       strings.TrimSpace(req.Occupation),
		"address":          strings.TrimSpace(req.Address),
		"specialization":   strings.TrimSpace(req.Specialization),
		"experience_years": req.ExperienceYears,
		"languages":        strings.TrimSpace(req.Languages),
		"bio":              strings.TrimSpace(req.Bio),
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id string) (Provider, error) {
	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, err
	}
	return provider, nil
}

// GetByUser looks a provider up by owning account.
func (s *Service) GetByUser(ctx context.Context, userID string) (Provider, error) {
	provider, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Provider{}, ErrNotFound
		}
		return Provider{}, err
	}
	return provider, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Provider, error) {
	filter.Specialization = strings.TrimSpace(filter.Specialization)
	filter.Language = strings.TrimSpace(filter.Language)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.List(ctx, filter)
}
