package plantypes

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
	ErrNotFound  = errors.New("plan type not found")
	ErrSlugTaken = errors.New("plan type name already in use")
	ErrInUse     = errors.New("plan type is referenced by existing plans")
)

// PlanCounter reports how many therapy plans reference a plan type. It is
// satisfied by the plans repository and keeps the delete protected without a
// package cycle.
type PlanCounter interface {
	CountByPlanType(ctx context.Context, planTypeID string) (int64, error)
}

type Service struct {
	repo     Repository
	plans    PlanCounter
	location *time.Location
}

func NewService(repo Repository, plans PlanCounter, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		plans:    plans,
		location: location,
	}
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (PlanType, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	providerIDs := req.ProviderIDs
	if providerIDs == nil {
		providerIDs = []string{}
	}

	item := PlanType{
		ID:          primitive.NewObjectID().Hex(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        Slugify(req.Name),
		Description: strings.TrimSpace(req.Description),
		BaseCost:    req.BaseCost,
		IsActive:    isActive,
		ProviderIDs: providerIDs,
		CreatedAt:   time.Now().In(s.location),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return PlanType{}, ErrSlugTaken
		}
		return PlanType{}, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpsertRequest) (PlanType, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	providerIDs := req.ProviderIDs
	if providerIDs == nil {
		providerIDs = []string{}
	}

	set := bson.M{
		"name":         strings.TrimSpace(req.Name),
		"slug":         Slugify(req.Name),
		"description":  strings.TrimSpace(req.Description),
		"base_cost":    req.BaseCost,
		"is_active":    isActive,
		"provider_ids": providerIDs,
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return PlanType{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return PlanType{}, ErrSlugTaken
		}
		return PlanType{}, err
	}
	return updated, nil
}

// Delete refuses while any therapy plan still references the type.
func (s *Service) Delete(ctx context.Context, id string) error {
	count, err := s.plans.CountByPlanType(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (PlanType, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return PlanType{}, ErrNotFound
		}
		return PlanType{}, err
	}
	return item, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (PlanType, error) {
	item, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return PlanType{}, ErrNotFound
		}
		return PlanType{}, err
	}
	return item, nil
}

func (s *Service) ListActive(ctx context.Context) ([]PlanType, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListForProvider(ctx context.Context, providerID string) ([]PlanType, error) {
	return s.repo.ListForProvider(ctx, providerID)
}
